// Package config holds all recall configuration, loaded from
// <data dir>/config.yaml with environment overrides applied on top.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all recall configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Backend API
	Backend BackendConfig `yaml:"backend"`

	// Agreement gate persistence
	Consent ConsentConfig `yaml:"consent"`

	// Local settings database
	Storage StorageConfig `yaml:"storage"`

	// Recordings inbox watcher
	Inbox InboxConfig `yaml:"inbox"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig configures the recall backend HTTP API.
type BackendConfig struct {
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	RetryMax int    `yaml:"retry_max"`
}

// ConsentConfig bounds the consent store calls so a hung database can
// never wedge the boot sequence.
type ConsentConfig struct {
	CheckTimeout string `yaml:"check_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// StorageConfig configures the local SQLite settings store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// InboxConfig configures the recordings inbox watcher.
type InboxConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the category file logger. The logging package
// reads the same yaml section independently to avoid a circular import.
type LoggingConfig struct {
	Level      string          `yaml:"level"` // debug, info, warn, error
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "recall",
		Version: "0.3.0",

		Backend: BackendConfig{
			BaseURL:  "http://localhost:3000",
			Timeout:  "30s",
			RetryMax: 3,
		},

		Consent: ConsentConfig{
			CheckTimeout: "5s",
			WriteTimeout: "5s",
		},

		Storage: StorageConfig{
			DatabasePath: "", // resolved against the data dir when empty
		},

		Inbox: InboxConfig{
			Enabled:  true,
			Dir:      "", // resolved against the data dir when empty
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("RECALL_BACKEND_URL"); url != "" {
		c.Backend.BaseURL = url
	}
	if path := os.Getenv("RECALL_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if dir := os.Getenv("RECALL_INBOX"); dir != "" {
		c.Inbox.Dir = dir
	}
	if v := os.Getenv("RECALL_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
		if c.Logging.Level == "" {
			c.Logging.Level = "debug"
		}
	}
}

// GetBackendTimeout returns the backend request timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetConsentCheckTimeout bounds the startup consent lookup.
func (c *Config) GetConsentCheckTimeout() time.Duration {
	d, err := time.ParseDuration(c.Consent.CheckTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetConsentWriteTimeout bounds recording an acceptance.
func (c *Config) GetConsentWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Consent.WriteTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetInboxDebounce returns the watcher debounce window.
func (c *Config) GetInboxDebounce() time.Duration {
	d, err := time.ParseDuration(c.Inbox.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url not configured (set RECALL_BACKEND_URL or backend.base_url)")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base_url: %s", c.Backend.BaseURL)
	}

	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("backend retry_max must be >= 0, got %d", c.Backend.RetryMax)
	}

	for name, value := range map[string]string{
		"backend.timeout":       c.Backend.Timeout,
		"consent.check_timeout": c.Consent.CheckTimeout,
		"consent.write_timeout": c.Consent.WriteTimeout,
		"inbox.debounce":        c.Inbox.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %s", name, value)
		}
	}

	return nil
}
