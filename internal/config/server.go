package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures ironboard-server
type ServerConfig struct {
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the store backend
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres or sqlite
	URL    string `yaml:"url"`    // DSN, or a file path for sqlite
}

// AuthConfig tunes sessions and magic links
type AuthConfig struct {
	SessionTTL        time.Duration `yaml:"session_ttl"`
	MagicLinkTTL      time.Duration `yaml:"magic_link_ttl"`
	BcryptCost        int           `yaml:"bcrypt_cost"`
	ExposeMagicTokens bool          `yaml:"expose_magic_tokens"` // Return the token in the response; development only
}

// LogConfig configures the server logger
type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
	Format  string `yaml:"format"` // text or json
}

// DefaultServerConfig returns defaults for a local Postgres
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen: ":8080",
		Database: DatabaseConfig{
			Driver: "postgres",
			URL:    "postgres://localhost:5432/ironboard?sslmode=disable",
		},
		Auth: AuthConfig{
			SessionTTL:   30 * 24 * time.Hour,
			MagicLinkTTL: 15 * time.Minute,
			BcryptCost:   10,
		},
		Log: LogConfig{
			Level:   "INFO",
			Console: true,
			Format:  "text",
		},
	}
}

// LoadServer reads path (optional) and applies environment overrides
func LoadServer(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Listen = ":" + strings.TrimPrefix(port, ":")
	}
	c.Listen = getEnv("IRONBOARD_LISTEN", c.Listen)
	c.Database.Driver = getEnv("IRONBOARD_DB_DRIVER", c.Database.Driver)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Log.Level = getEnv("IRONBOARD_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("IRONBOARD_LOG_FILE", c.Log.File)
	c.Log.Format = getEnv("IRONBOARD_LOG_FORMAT", c.Log.Format)
	if v := os.Getenv("IRONBOARD_LOG_CONSOLE"); v != "" {
		c.Log.Console = v == "true"
	}
	if v := os.Getenv("IRONBOARD_EXPOSE_MAGIC_TOKENS"); v != "" {
		c.Auth.ExposeMagicTokens = v == "true"
	}
}

// Validate rejects settings the server cannot start with
func (c *ServerConfig) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "postgresql", "pg", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.MagicLinkTTL <= 0 {
		return fmt.Errorf("session_ttl and magic_link_ttl must be positive")
	}
	return nil
}
