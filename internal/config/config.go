// Package config loads the application configuration from a YAML file.
//
// Every field is optional; zero values select the built-in defaults, so
// an absent file yields a fully usable configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied where the file leaves a field unset.
const (
	DefaultDBFile       = "lazynote.db"
	DefaultDebounceMS   = 800
	DefaultFlushRetries = 5
)

// Config is the on-disk configuration.
type Config struct {
	// DBPath locates the SQLite database file.
	DBPath string `yaml:"db_path,omitempty"`

	// DebounceMS is the autosave debounce in milliseconds.
	DebounceMS int `yaml:"debounce_ms,omitempty"`

	// FlushRetries bounds the save attempts of an explicit flush.
	FlushRetries int `yaml:"flush_retries,omitempty"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DBPath:       defaultDBPath(),
		DebounceMS:   DefaultDebounceMS,
		FlushRetries: DefaultFlushRetries,
	}
}

// Load reads and parses a configuration file. A missing file is not an
// error; it yields Default(). Unknown fields are rejected so typos
// surface instead of silently falling back to defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	cfg = applyDefaults(cfg)
	return cfg, nil
}

// Debounce returns the autosave debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func validate(c Config) error {
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}
	if c.FlushRetries < 0 {
		return fmt.Errorf("flush_retries must not be negative")
	}
	return nil
}

func applyDefaults(c Config) Config {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	if c.DebounceMS == 0 {
		c.DebounceMS = DefaultDebounceMS
	}
	if c.FlushRetries == 0 {
		c.FlushRetries = DefaultFlushRetries
	}
	return c
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBFile
	}
	return filepath.Join(home, ".lazynote", DefaultDBFile)
}
