package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is used until the user points the client elsewhere
const DefaultServerURL = "http://localhost:8080"

// Config holds the terminal client's settings and login state
type Config struct {
	ServerURL      string `yaml:"server_url" json:"server_url"`
	Token          string `yaml:"token,omitempty" json:"token,omitempty"`
	UserID         string `yaml:"user_id,omitempty" json:"user_id,omitempty"`
	Email          string `yaml:"email,omitempty" json:"email,omitempty"`
	CurrentProject string `yaml:"current_project,omitempty" json:"current_project,omitempty"` // Project used when --project is omitted
	ConfirmDelete  bool   `yaml:"confirm_delete" json:"confirm_delete"`                       // Ask before deleting projects

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	path string
}

// Dir returns ~/.ironboard, or $IRONBOARD_HOME when set
func Dir() (string, error) {
	if dir := os.Getenv("IRONBOARD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ironboard"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "ironboard.log")
	}

	return &Config{
		ServerURL:     getEnv("IRONBOARD_SERVER", DefaultServerURL),
		ConfirmDelete: true,
		LogLevel:      getEnv("IRONBOARD_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("IRONBOARD_LOG_FILE", logPath),
		LogConsole:    getEnv("IRONBOARD_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads the client config from its default location
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "client.yaml"))
}

// LoadFrom reads the client config at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	return cfg, nil
}

// Path returns the file the config is saved to
func (c *Config) Path() string {
	return c.path
}

// LoggedIn reports whether a session token is stored
func (c *Config) LoggedIn() bool {
	return c.Token != ""
}

// ClearSession forgets the stored login
func (c *Config) ClearSession() {
	c.Token = ""
	c.UserID = ""
	c.Email = ""
	c.CurrentProject = ""
}

// Save writes the config with owner-only permissions, since it holds a
// session token.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "client.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(c.path, 0600)
}
