package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// config.go loads, validates, and exposes application configuration.

// Config holds the application configuration.
type Config struct {
	Format           string `json:"format"`
	UpdateIntervalMS int    `json:"update_interval_ms"`
	FallbackWidth    int    `json:"fallback_width"`
	DayWidth         int    `json:"day_width"`
	LogLevel         string `json:"log_level"`
	LogDir           string `json:"log_dir"`

	// Fetch command
	Proxy          string `json:"proxy"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// Demo command
	Workers int `json:"workers"`

	// Internal
	Path string `json:"-"` // directory the config file was loaded from
}

// defaults returns a Config with default values.
func defaults() *Config {
	return &Config{
		Format:           "|=|",
		UpdateIntervalMS: 500,
		FallbackWidth:    80,
		DayWidth:         2,
		LogLevel:         "info",
		LogDir:           ".",
		TimeoutSeconds:   30,
		Workers:          1,
	}
}

// Load reads configuration from a JSON file, searching the usual spots
// when no explicit path is given. A missing file is not an error: the
// defaults are returned so the tool works unconfigured out of the box.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	paths := []string{
		configPath,
		"config.json",
		filepath.Join(os.Getenv("HOME"), ".config/progressbar/config.json"),
	}

	var configFile string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			configFile = p
			break
		}
	}

	if configFile == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Path = filepath.Dir(configFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate normalizes out-of-range values back to their defaults. The
// bar format string is deliberately not checked here: the progress
// package owns that contract and rejects a bad format at construction.
func (c *Config) Validate() error {
	if c.Format == "" {
		c.Format = "|=|"
	}

	if c.UpdateIntervalMS < 1 {
		c.UpdateIntervalMS = 500
	}

	if c.FallbackWidth < 1 {
		c.FallbackWidth = 80
	}

	// The ETA day count runs to two digits.
	if c.DayWidth < 2 {
		c.DayWidth = 2
	}

	if c.TimeoutSeconds < 1 {
		c.TimeoutSeconds = 30
	}

	if c.Workers < 1 {
		c.Workers = 1
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}

// UpdateInterval returns the redraw base interval as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// Timeout returns the HTTP client timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
