// Package tokencache persists the identity provider's serialized token
// cache. The blob is opaque: it is never parsed here, only passed
// between disk and the MSAL in-memory cache.
package tokencache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
)

// DefaultPath returns the user-scoped cache file location shared with
// other launchers (~/.minecraft/msal_token_cache.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".minecraft", "msal_token_cache.json"), nil
}

var _ cache.ExportReplace = (*File)(nil)

// File is a file-backed ExportReplace implementation. A missing file is
// an empty cache, not an error. Export skips the write when the blob is
// unchanged since the last load or write, so a silent reacquisition
// that does not touch provider state never rewrites the file.
//
// Single-writer only: concurrent launcher processes may race on the
// file, exactly as the upstream cache format assumes.
type File struct {
	path string

	mu   sync.Mutex
	last []byte // last blob read from or written to disk
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Replace loads the cache file into the in-memory cache.
func (f *File) Replace(_ context.Context, c cache.Unmarshaler, _ cache.ReplaceHints) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading token cache '%s': %w", f.path, err)
	}

	if err := c.Unmarshal(data); err != nil {
		return fmt.Errorf("deserializing token cache '%s': %w", f.path, err)
	}
	f.last = data
	return nil
}

// Export writes the in-memory cache back to disk.
func (f *File) Export(_ context.Context, c cache.Marshaler, _ cache.ExportHints) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("serializing token cache: %w", err)
	}

	if bytes.Equal(data, f.last) {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory '%s': %w", dir, err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("writing token cache '%s': %w", f.path, err)
	}
	f.last = data
	return nil
}
