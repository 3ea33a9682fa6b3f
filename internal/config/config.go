package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`

	// Parameters the CLI puts in the option bag when no flag overrides them
	Derive DeriveConfig `json:"derive" mapstructure:"derive"`

	// Prometheus collectors
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	File   string `json:"file" mapstructure:"file"`     // Log file path (empty = stderr)
	Color  bool   `json:"color" mapstructure:"color"`   // Colored level tags in text format
}

// DeriveConfig holds scrypt defaults for the CLI. A zero value is passed
// through as-is and therefore resolves to an absent parameter.
type DeriveConfig struct {
	N        int `json:"n" mapstructure:"n"`
	R        int `json:"r" mapstructure:"r"`
	P        int `json:"p" mapstructure:"p"`
	KeyLen   int `json:"key_len" mapstructure:"key_len"`
	SaltSize int `json:"salt_size" mapstructure:"salt_size"`
}

// MetricsConfig for the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
		Derive: DeriveConfig{
			N:        16384, // 16 MiB of memory with r=8
			R:        8,
			P:        1,
			KeyLen:   32,
			SaltSize: 16,
		},
		Metrics: MetricsConfig{
			Namespace: "scryptbridge",
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Derive.N < 0 || c.Derive.R < 0 || c.Derive.P < 0 || c.Derive.KeyLen < 0 {
		return errors.New("derive parameters must not be negative")
	}

	if c.Derive.SaltSize <= 0 {
		return errors.New("derive.salt_size must be positive")
	}

	if c.Metrics.Namespace == "" {
		return errors.New("metrics.namespace is required")
	}

	return nil
}

// EnsureDirectories creates the directory of the log file.
func (c *Config) EnsureDirectories() error {
	if c.Log.File == "" {
		return nil
	}

	dir := filepath.Dir(c.Log.File)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create log directory %s: %w", dir, err)
	}
	return nil
}
