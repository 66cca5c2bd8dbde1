// Package config loads the optional services configuration file. It
// lets the pipeline point at a staging tenant or an auth proxy without
// rebuilding; absent entries keep their production defaults.
package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"
)

type Config struct {
	MSA      MSAConfig      `yaml:"msa"`
	Services ServicesConfig `yaml:"services"`
}

// MSAConfig configures the Microsoft identity provider client.
type MSAConfig struct {
	// ClientID is the Azure application (client) ID used for the
	// device-code flow.
	ClientID string `yaml:"client_id"`

	// Authority overrides the consumer-tenant authority URL.
	Authority string `yaml:"authority"`

	// CachePath overrides the token cache file location.
	CachePath string `yaml:"cache_path"`
}

// ServicesConfig overrides the exchange endpoint URLs.
type ServicesConfig struct {
	XboxAuthURL         string `yaml:"xbox_auth_url" mapstructure:"xbox_auth_url"`
	XstsAuthURL         string `yaml:"xsts_auth_url" mapstructure:"xsts_auth_url"`
	MinecraftLoginURL   string `yaml:"minecraft_login_url" mapstructure:"minecraft_login_url"`
	MinecraftProfileURL string `yaml:"minecraft_profile_url" mapstructure:"minecraft_profile_url"`
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

// ServicesFromMap decodes a loosely-typed settings map (e.g. a viper
// subtree from the user config) into a ServicesConfig.
func ServicesFromMap(m map[string]any) (*ServicesConfig, error) {
	var cfg ServicesConfig
	if err := mapstructure.Decode(m, &cfg); err != nil {
		return nil, fmt.Errorf("decoding services settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Services.Validate(); err != nil {
		return fmt.Errorf("validating services: %w", err)
	}
	if c.MSA.Authority != "" {
		if err := validateURL("msa.authority", c.MSA.Authority); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServicesConfig) Validate() error {
	fields := map[string]string{
		"services.xbox_auth_url":         s.XboxAuthURL,
		"services.xsts_auth_url":         s.XstsAuthURL,
		"services.minecraft_login_url":   s.MinecraftLoginURL,
		"services.minecraft_profile_url": s.MinecraftProfileURL,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := validateURL(name, value); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme '%s'", name, u.Scheme)
	}
	return nil
}
