// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// ufood client.
//
// Supports both TOML and JSON configuration formats, with built-in defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.ufood/config.toml
//   - ~/.ufood/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/GutSayN/ufood-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ufood client configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Services holds the remote microservice endpoints.
	Services ServicesConfig `toml:"services" json:"services"`

	// Network holds HTTP client tuning.
	Network NetworkConfig `toml:"network" json:"network"`

	// Session holds session lifecycle tuning.
	Session SessionConfig `toml:"session" json:"session"`

	// Lockout holds failed-login lockout tuning.
	Lockout LockoutConfig `toml:"lockout" json:"lockout"`

	// Storage holds local persistence settings.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Telemetry holds local analytics settings.
	Telemetry TelemetryConfig `toml:"telemetry" json:"telemetry"`

	// UI holds terminal UI settings.
	UI UIConfig `toml:"ui" json:"ui"`
}

// ServicesConfig contains the base URLs of the two UFood microservices.
type ServicesConfig struct {
	// AuthURL is the base URL of the auth service.
	AuthURL string `toml:"auth_url" json:"auth_url"`
	// ProductURL is the base URL of the product service.
	ProductURL string `toml:"product_url" json:"product_url"`
}

// NetworkConfig contains HTTP client configuration.
type NetworkConfig struct {
	// RequestTimeoutSecs is the hard timeout for a single request (default: 30).
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// RateLimitRPS caps outbound requests per second (0 = unlimited).
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
}

// SessionConfig contains session lifecycle configuration.
type SessionConfig struct {
	// TimeoutSecs is the idle-session timeout (default: 3600).
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MonitorIntervalSecs is the background expiry check period (default: 60).
	MonitorIntervalSecs int `toml:"monitor_interval_secs" json:"monitor_interval_secs"`
}

// LockoutConfig contains failed-login lockout configuration.
type LockoutConfig struct {
	// MaxAttempts is the number of failed logins before lockout (default: 5).
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`
	// DurationSecs is how long a lockout lasts (default: 900).
	DurationSecs int `toml:"duration_secs" json:"duration_secs"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// Path is the SQLite database backing the device key-value store.
	// Default: ~/.ufood/ufood.db
	Path string `toml:"path" json:"path"`
}

// TelemetryConfig contains local analytics configuration.
type TelemetryConfig struct {
	// Enabled controls whether UI events are recorded locally.
	Enabled bool `toml:"enabled" json:"enabled"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a denser browse layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// RequestTimeout returns the configured request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Network.RequestTimeoutSecs) * time.Second
}

// SessionTimeout returns the configured idle-session timeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutSecs) * time.Second
}

// MonitorInterval returns the configured monitor period as a duration.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Session.MonitorIntervalSecs) * time.Second
}

// LockoutDuration returns the configured lockout window as a duration.
func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.Lockout.DurationSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Services: ServicesConfig{
			AuthURL:    "https://auth.ufood.app/api",
			ProductURL: "https://products.ufood.app/api",
		},

		Network: NetworkConfig{
			RequestTimeoutSecs: 30,
			RateLimitRPS:       0,
		},

		Session: SessionConfig{
			TimeoutSecs:         3600, // 1 hour of inactivity ends the session
			MonitorIntervalSecs: 60,
		},

		Lockout: LockoutConfig{
			MaxAttempts:  5,
			DurationSecs: 900, // 15 minutes
		},

		Storage: StorageConfig{
			Path: "", // resolved to ~/.ufood/ufood.db in SetDefaults
		},

		Telemetry: TelemetryConfig{
			Enabled: true,
		},

		UI: UIConfig{
			Theme:       "auto",
			CompactMode: false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the ufood configuration directory (~/.ufood).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".ufood"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, preferring TOML over JSON, and falls
// back to defaults when no config file exists. Environment overrides apply
// in every case.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the TOML config path atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0o600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies UFOOD_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("UFOOD_AUTH_URL"); v != "" {
		c.Services.AuthURL = v
	}
	if v := os.Getenv("UFOOD_PRODUCT_URL"); v != "" {
		c.Services.ProductURL = v
	}
	if v := os.Getenv("UFOOD_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("UFOOD_REQUEST_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Network.RequestTimeoutSecs = n
		}
	}
	if v := os.Getenv("UFOOD_SESSION_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Session.TimeoutSecs = n
		}
	}
	if v := os.Getenv("UFOOD_TELEMETRY"); v != "" {
		c.Telemetry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("UFOOD_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero-valued fields with their defaults.
func (c *Config) SetDefaults() {
	def := Default()

	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Services.AuthURL == "" {
		c.Services.AuthURL = def.Services.AuthURL
	}
	if c.Services.ProductURL == "" {
		c.Services.ProductURL = def.Services.ProductURL
	}
	if c.Network.RequestTimeoutSecs <= 0 {
		c.Network.RequestTimeoutSecs = def.Network.RequestTimeoutSecs
	}
	if c.Session.TimeoutSecs <= 0 {
		c.Session.TimeoutSecs = def.Session.TimeoutSecs
	}
	if c.Session.MonitorIntervalSecs <= 0 {
		c.Session.MonitorIntervalSecs = def.Session.MonitorIntervalSecs
	}
	if c.Lockout.MaxAttempts <= 0 {
		c.Lockout.MaxAttempts = def.Lockout.MaxAttempts
	}
	if c.Lockout.DurationSecs <= 0 {
		c.Lockout.DurationSecs = def.Lockout.DurationSecs
	}
	if c.Storage.Path == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Storage.Path = filepath.Join(dir, "ufood.db")
		}
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Services.AuthURL, "http://") && !strings.HasPrefix(c.Services.AuthURL, "https://") {
		return ValidationError{Field: "services.auth_url", Message: "must be an http(s) URL"}
	}
	if !strings.HasPrefix(c.Services.ProductURL, "http://") && !strings.HasPrefix(c.Services.ProductURL, "https://") {
		return ValidationError{Field: "services.product_url", Message: "must be an http(s) URL"}
	}
	if c.Network.RateLimitRPS < 0 {
		return ValidationError{Field: "network.rate_limit_rps", Message: "must be >= 0"}
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be dark, light, or auto"}
	}
	return nil
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
