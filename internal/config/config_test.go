package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.SettingsPath != "" {
		t.Errorf("SettingsPath = %q, want empty (store default)", cfg.SettingsPath)
	}
	if !cfg.Update.Check {
		t.Error("Update.Check should default to true")
	}
	if cfg.Update.URL == "" {
		t.Error("Update.URL should not be empty")
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
log_level: debug
settings_path: /tmp/keylock-test/settings.conf
update:
  check: false
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.SettingsPath != "/tmp/keylock-test/settings.conf" {
		t.Errorf("SettingsPath = %q, want %q", cfg.SettingsPath, "/tmp/keylock-test/settings.conf")
	}
	if cfg.Update.Check {
		t.Error("Update.Check = true, want false")
	}
	// Fields absent from the file keep their defaults.
	if cfg.Update.URL == "" {
		t.Error("Update.URL should fall back to the default")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
settings_path: ~/state/settings.conf
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "state/settings.conf")
	if cfg.SettingsPath != expected {
		t.Errorf("SettingsPath = %q, want %q", cfg.SettingsPath, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: true,
		},
		{
			name:    "update check without url",
			modify:  func(c *Config) { c.Update.URL = "" },
			wantErr: true,
		},
		{
			name:    "update disabled allows empty url",
			modify:  func(c *Config) { c.Update.Check = false; c.Update.URL = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
