// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the TOML configuration from ~/.arcana and
// exposes it through a process-wide accessor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the full application configuration.
type Config struct {
	API APIConfig `toml:"api"`
	UI  UIConfig  `toml:"ui"`
	Log LogConfig `toml:"log"`
}

// APIConfig selects the backend.
type APIConfig struct {
	// BaseURL points at the arcana backend. The ARCANA_API_URL
	// environment variable overrides it.
	BaseURL string `toml:"base_url"`
}

// UIConfig tunes presentation.
type UIConfig struct {
	// Theme selects the color palette: "mystic" or "plain".
	Theme string `toml:"theme"`
	// ShowTimestamps toggles per-message times in the transcript.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	// Path of the log file. Empty disables file logging.
	Path string `toml:"path"`
}

// =============================================================================
// LOADING
// =============================================================================

// envAPIURL overrides api.base_url when set.
const envAPIURL = "ARCANA_API_URL"

// Dir returns the application's data directory (~/.arcana).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".arcana"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{BaseURL: "http://localhost:8000"},
		UI:  UIConfig{Theme: "mystic", ShowTimestamps: false},
	}
}

// Load reads config.toml from dir, layering it over the defaults. A
// missing file is not an error. Environment overrides apply last.
func Load(dir string) (*Config, error) {
	cfg := Default()
	cfg.Log.Path = filepath.Join(dir, "arcana.log")

	path := filepath.Join(dir, "config.toml")
	if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if v := os.Getenv(envAPIURL); v != "" {
		cfg.API.BaseURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the rest of the app cannot honor.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	switch c.UI.Theme {
	case "mystic", "plain":
	default:
		return fmt.Errorf("ui.theme must be \"mystic\" or \"plain\", got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu sync.RWMutex
	global   = Default()
)

// Global returns the process-wide configuration.
func Global() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal installs the process-wide configuration.
func SetGlobal(c *Config) {
	if c == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	global = c
}
