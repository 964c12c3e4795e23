// Package config loads viewql.yaml.
//
//	database: candidates.db   # SQLite file; empty builds SQL without running it
//	views: ./views            # directory of CUE view files
//	max_retries: 3            # extra generator attempts per stage
//	log_level: info           # debug, info, warn or error
//
// Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up when none is given.
const FileName = "viewql.yaml"

// Config holds the settings shared by the query commands.
type Config struct {
	// Database is the SQLite file queries run against. Empty means queries
	// are built and printed but not executed.
	Database string `yaml:"database,omitempty"`

	// Views is the directory holding the CUE view declarations. Relative
	// paths are resolved against the config file's directory.
	Views string `yaml:"views,omitempty"`

	// MaxRetries is the number of extra generator attempts per stage after
	// a rejected IQL text.
	MaxRetries int `yaml:"max_retries"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		MaxRetries: 3,
		LogLevel:   "info",
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// LoadOptional loads path, or FileName in the working directory when path
// is empty. A missing default file yields Default().
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(FileName); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(FileName)
}

// Parse parses config content. Unset fields keep their defaults and
// unknown fields are rejected. The path argument is used only for error
// messages.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

func (c *Config) resolve(dir string) {
	if c.Views != "" && !filepath.IsAbs(c.Views) {
		c.Views = filepath.Join(dir, c.Views)
	}
	if c.Database != "" && c.Database != ":memory:" && !filepath.IsAbs(c.Database) {
		c.Database = filepath.Join(dir, c.Database)
	}
}

// ParseLevel converts a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", s)
	}
}
