// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for neural.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation:
//   - ~/.neural/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete neural configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend connection
	Backend BackendConfig `toml:"backend"`

	// Chat defaults
	Chat ChatConfig `toml:"chat"`

	// Typewriter reveal
	Typewriter TypewriterConfig `toml:"typewriter"`

	// Audio playback
	Audio AudioConfig `toml:"audio"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains the websocket backend connection settings.
type BackendConfig struct {
	// URL is the backend websocket endpoint
	URL string `toml:"url"`
	// DialTimeoutSecs bounds connection establishment
	DialTimeoutSecs int `toml:"dial_timeout_secs"`
	// SendRate is the outbound events-per-second throttle
	SendRate float64 `toml:"send_rate"`
	// SendBurst is the throttle's burst allowance
	SendBurst int `toml:"send_burst"`
}

// ChatConfig contains prompt submission defaults.
type ChatConfig struct {
	// DefaultProvider selects the backend inference provider
	DefaultProvider string `toml:"default_provider"`
	// DefaultModel is the model used until the user picks another
	DefaultModel string `toml:"default_model"`
}

// TypewriterConfig controls the incremental reveal of replies.
type TypewriterConfig struct {
	// Enabled toggles the reveal; disabled means text appears at once
	Enabled bool `toml:"enabled"`
}

// AudioConfig controls speech playback.
type AudioConfig struct {
	// Enabled toggles the per-message speaker buttons
	Enabled bool `toml:"enabled"`
	// Player overrides playback binary autodetection (empty = autodetect)
	Player string `toml:"player"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark", or "light"
	Theme string `toml:"theme"`
	// Markdown renders assistant replies through the markdown renderer
	Markdown bool `toml:"markdown"`
	// SidebarVisible shows the session sidebar at startup
	SidebarVisible bool `toml:"sidebar_visible"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			URL:             "ws://127.0.0.1:5678/ws",
			DialTimeoutSecs: 5,
			SendRate:        10,
			SendBurst:       20,
		},
		Chat: ChatConfig{
			DefaultProvider: "ollama",
			DefaultModel:    "",
		},
		Typewriter: TypewriterConfig{Enabled: true},
		Audio:      AudioConfig{Enabled: true},
		UI: UIConfig{
			Theme:          "auto",
			Markdown:       true,
			SidebarVisible: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the neural configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".neural"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CachePath returns the path to the session index cache database.
func CachePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache", "sessions.db"), nil
}

// LogPath returns the path to the application log file.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "neural.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads TOML configuration from the given path into cfg.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero values with defaults after a partial file load.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	if c.Backend.DialTimeoutSecs <= 0 {
		c.Backend.DialTimeoutSecs = def.Backend.DialTimeoutSecs
	}
	if c.Backend.SendRate <= 0 {
		c.Backend.SendRate = def.Backend.SendRate
	}
	if c.Backend.SendBurst <= 0 {
		c.Backend.SendBurst = def.Backend.SendBurst
	}
	if c.Chat.DefaultProvider == "" {
		c.Chat.DefaultProvider = def.Chat.DefaultProvider
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("backend.url: scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.url: missing host")
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme: must be auto, dark, or light, got %q", c.UI.Theme)
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NEURAL_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("NEURAL_PROVIDER"); v != "" {
		c.Chat.DefaultProvider = v
	}
	if v := os.Getenv("NEURAL_MODEL"); v != "" {
		c.Chat.DefaultModel = v
	}
	if v := os.Getenv("NEURAL_TYPEWRITER"); v != "" {
		c.Typewriter.Enabled = parseBool(v, c.Typewriter.Enabled)
	}
	if v := os.Getenv("NEURAL_AUDIO"); v != "" {
		c.Audio.Enabled = parseBool(v, c.Audio.Enabled)
	}
	if v := os.Getenv("NEURAL_AUDIO_PLAYER"); v != "" {
		c.Audio.Player = v
	}
	if v := os.Getenv("NEURAL_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigMu.RLock()
	if globalConfig != nil {
		defer globalConfigMu.RUnlock()
		return globalConfig
	}
	globalConfigMu.RUnlock()

	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = Default()
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
