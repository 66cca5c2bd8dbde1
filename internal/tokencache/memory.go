package tokencache

import (
	"context"
	"sync"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
)

var _ cache.ExportReplace = (*Memory)(nil)

// Memory holds the serialized cache blob in memory only. Used for
// --no-cache sessions and tests; nothing survives the process.
type Memory struct {
	mu   sync.RWMutex
	blob []byte

	// Exports counts the writes the provider asked for, so callers can
	// observe cache-write discipline.
	exports int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Replace(_ context.Context, c cache.Unmarshaler, _ cache.ReplaceHints) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blob) == 0 {
		return nil
	}
	return c.Unmarshal(m.blob)
}

func (m *Memory) Export(_ context.Context, c cache.Marshaler, _ cache.ExportHints) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = data
	m.exports++
	return nil
}

func (m *Memory) Exports() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exports
}
