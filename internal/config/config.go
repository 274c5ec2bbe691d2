// Package config loads the application configuration from a YAML file
// with environment-variable resolution for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the file omits a setting.
const (
	DefaultAddr           = ":8080"
	DefaultDatabasePath   = "clem.db"
	DefaultModel          = "gpt-4o-mini"
	DefaultAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultTimeoutSeconds = 60
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Reasoner ReasonerConfig `yaml:"reasoner"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures claim persistence.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// ReasonerConfig configures the external reasoner client.
type ReasonerConfig struct {
	// Model is the chat completion model identifier.
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint (empty = provider default).
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key. The
	// key itself never appears in the file.
	APIKeyEnv string `yaml:"api_key_env"`

	// TimeoutSeconds bounds each reasoner call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Temperature for completions. Zero favors deterministic output.
	Temperature float32 `yaml:"temperature"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: DefaultAddr},
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Reasoner: ReasonerConfig{
			Model:          DefaultModel,
			APIKeyEnv:      DefaultAPIKeyEnv,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
}

// Load reads a YAML config file and fills omitted settings with defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDatabasePath
	}
	if cfg.Reasoner.Model == "" {
		cfg.Reasoner.Model = DefaultModel
	}
	if cfg.Reasoner.APIKeyEnv == "" {
		cfg.Reasoner.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Reasoner.TimeoutSeconds <= 0 {
		cfg.Reasoner.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return cfg, nil
}

// APIKey resolves the reasoner API key from the configured environment
// variable.
func (c ReasonerConfig) APIKey() (string, error) {
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.APIKeyEnv)
	}
	return key, nil
}

// Timeout returns the per-call reasoner timeout as a duration.
func (c ReasonerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
