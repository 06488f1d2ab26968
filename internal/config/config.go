package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chaz8081/keylock/internal/update"
)

// Config holds all application configuration. Runtime state (blocking flag,
// recorded shortcut) lives in the settings store, not here.
type Config struct {
	LogLevel     string       `yaml:"log_level"`
	SettingsPath string       `yaml:"settings_path"`
	Update       UpdateConfig `yaml:"update"`
}

// UpdateConfig holds update-check settings.
type UpdateConfig struct {
	Check bool   `yaml:"check"`
	URL   string `yaml:"url"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keylock")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		SettingsPath: "", // settings.DefaultPath
		Update: UpdateConfig{
			Check: true,
			URL:   update.DefaultVersionURL,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled with
// defaults. Tilde (~) in settings_path is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.SettingsPath = expandTilde(cfg.SettingsPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, or error, got %q", c.LogLevel)
	}

	if c.Update.Check && c.Update.URL == "" {
		return fmt.Errorf("update.url must not be empty when update.check is enabled")
	}

	return nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
