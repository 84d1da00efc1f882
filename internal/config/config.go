// Package config loads zbirka settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds the process configuration.
type Config struct {
	// Storage
	Backend   string `yaml:"backend"`
	Database  string `yaml:"database"`   // SQLite file
	BadgerDir string `yaml:"badger_dir"` // Badger directory

	// HTTP API
	Addr     string        `yaml:"addr"`
	TokenTTL time.Duration `yaml:"token_ttl"`

	// Logging
	Log string `yaml:"log"` // extra log file, empty for stdout/stderr only
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:   BackendSQLite,
		Database:  "zbirka.sqlite3",
		BadgerDir: "zbirka.badger",
		Addr:      "127.0.0.1:8080",
		TokenTTL:  30 * 24 * time.Hour,
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.Database == "" {
			return fmt.Errorf("database path is required for the %s backend", c.Backend)
		}
	case BackendBadger:
		if c.BadgerDir == "" {
			return fmt.Errorf("badger_dir is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendBadger)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	return nil
}

// Load reads the config file at path over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
