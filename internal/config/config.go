// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// persona-desk.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides:
//   - ~/.personadesk/config.toml
//   - PERSONADESK_* environment variables (highest precedence)
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/persona-desk/internal/persona"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete persona-desk configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Downloads DownloadsConfig `toml:"downloads"`
	UI        UIConfig        `toml:"ui"`
}

// BackendConfig points at the assistant backend.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
	// TimeoutSecs bounds chat and listing requests.
	TimeoutSecs int `toml:"timeout_secs"`
}

// DownloadsConfig controls where fetched documents land.
type DownloadsConfig struct {
	Dir string `toml:"dir"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	// DefaultPersona is selected at startup.
	DefaultPersona string `toml:"default_persona"`
	// AltScreen runs the TUI on the terminal's alternate screen.
	AltScreen bool `toml:"alt_screen"`
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8000",
			TimeoutSecs: 30,
		},
		Downloads: DownloadsConfig{
			Dir: "downloads",
		},
		UI: UIConfig{
			DefaultPersona: persona.HR.String(),
			AltScreen:      true,
		},
	}
}

// Dir returns the persona-desk configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".personadesk"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, falling back to defaults when the
// file is absent, then applies environment overrides and validates.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file. A missing file
// is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults backfills zero values so a partial config file still
// yields a complete configuration.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = def.Downloads.Dir
	}
	if c.UI.DefaultPersona == "" {
		c.UI.DefaultPersona = def.UI.DefaultPersona
	}
}

// ApplyEnvOverrides applies PERSONADESK_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PERSONADESK_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("PERSONADESK_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("PERSONADESK_DOWNLOAD_DIR"); v != "" {
		c.Downloads.Dir = v
	}
	if v := os.Getenv("PERSONADESK_PERSONA"); v != "" {
		c.UI.DefaultPersona = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "backend.url", Message: "must be an absolute http(s) URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "backend.url", Message: "unsupported scheme " + u.Scheme}
	}
	if c.Backend.TimeoutSecs <= 0 {
		return ValidationError{Field: "backend.timeout_secs", Message: "must be positive"}
	}
	if c.Downloads.Dir == "" {
		return ValidationError{Field: "downloads.dir", Message: "must not be empty"}
	}
	if !persona.NewRegistry().Contains(persona.ID(c.UI.DefaultPersona)) {
		return ValidationError{Field: "ui.default_persona", Message: "unknown persona " + c.UI.DefaultPersona}
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path, creating the
// directory if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
