// Package cliconfig persists CLI state between runs: a summary of the
// last successful login per account. Tokens are never stored here; the
// game token is ephemeral and the identity session lives in the
// provider's own cache file.
package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

// Session is the record of one successful login.
type Session struct {
	// UUID is the player's profile ID.
	UUID string `json:"uuid"`

	// Name is the display name at last login.
	Name string `json:"name"`

	// Account is the Microsoft account the session belongs to.
	Account string `json:"account,omitempty"`

	// LastLogin is when the pipeline last completed for this account.
	LastLogin time.Time `json:"last_login"`
}

type CLIConfig struct {
	// Sessions maps player UUID to the last known session summary.
	Sessions map[string]*Session `json:"sessions"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".craftauth", "config.json"), nil
}

func Load() (*CLIConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*CLIConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config file '%s': %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var cfg CLIConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config file '%s': %w", path, err)
	}
	return &cfg, nil
}

func Save(cfg *CLIConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *CLIConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory '%s': %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file '%s' for writing: %w", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if err := json.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config to file '%s': %w", path, err)
	}
	return nil
}

// RecordSession upserts the session for the given UUID.
func (c *CLIConfig) RecordSession(uuid string, session *Session) {
	if c.Sessions == nil {
		c.Sessions = make(map[string]*Session)
	}
	c.Sessions[uuid] = session
}

func (c *CLIConfig) GetSession(uuid string) (*Session, error) {
	session, ok := c.Sessions[uuid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
