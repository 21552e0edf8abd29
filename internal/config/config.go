// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cardbinder/cardbinder/internal/collection"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Pricing  PricingConfig  `toml:"pricing"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int     `toml:"port"`               // Listen port
	RateLimitPerSec float64 `toml:"rate_limit_per_sec"` // Per-client request rate (0 disables)
	RateLimitBurst  int     `toml:"rate_limit_burst"`   // Per-client burst allowance
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // Path to the SQLite database (empty = default location)
}

// AuthConfig contains token verification settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"` // HMAC secret for session tokens
}

// PricingConfig contains valuation settings.
type PricingConfig struct {
	DefaultSource string `toml:"default_source"` // Pricing source used when a request picks none
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			RateLimitPerSec: 20,
			RateLimitBurst:  40,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Auth: AuthConfig{
			JWTSecret: "",
		},
		Pricing: PricingConfig{
			DefaultSource: string(collection.DefaultSource),
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardbinder")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the file
// doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.RateLimitPerSec < 0 {
		return fmt.Errorf("rate limit cannot be negative: %f", c.Server.RateLimitPerSec)
	}
	if c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit burst cannot be negative: %d", c.Server.RateLimitBurst)
	}

	if c.Pricing.DefaultSource != "" {
		if _, err := collection.ParseSource(c.Pricing.DefaultSource); err != nil {
			return fmt.Errorf("invalid default pricing source: %w", err)
		}
	}

	return nil
}

// DefaultSource returns the configured default pricing source.
func (c *Config) DefaultSource() collection.PricingSource {
	source, err := collection.ParseSource(c.Pricing.DefaultSource)
	if err != nil {
		return collection.DefaultSource
	}
	return source
}
