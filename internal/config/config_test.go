package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Check version
	if cfg.Version != 2 {
		t.Errorf("Version = %d, want 2", cfg.Version)
	}

	// Check report defaults
	if cfg.Report.OutputPath != "api-report.json" {
		t.Errorf("OutputPath = %q, want %q", cfg.Report.OutputPath, "api-report.json")
	}

	// Check snapshot defaults
	if !cfg.Snapshots.Enabled {
		t.Error("snapshots should be enabled by default")
	}
	if cfg.Snapshots.StorePath != ".surfex/snapshots.db" {
		t.Errorf("StorePath = %q, want %q", cfg.Snapshots.StorePath, ".surfex/snapshots.db")
	}
	if cfg.Snapshots.KeepLast <= 0 {
		t.Error("KeepLast should be positive")
	}

	// Check version-check defaults
	if len(cfg.Versions.Ignore) == 0 {
		t.Error("Versions.Ignore should not be empty")
	}

	// Check logging settings
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "human")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// Default config must validate
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadConfigMissingReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Version != 2 {
		t.Errorf("Version = %d, want 2", cfg.Version)
	}
	if cfg.Report.OutputPath != "api-report.json" {
		t.Errorf("OutputPath = %q, want default", cfg.Report.OutputPath)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".surfex")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `{
  "version": 2,
  "repoRoot": ".",
  "report": {"outputPath": "dist/surface.json"},
  "snapshots": {"enabled": false},
  "logging": {"format": "json", "level": "debug"}
}`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Report.OutputPath != "dist/surface.json" {
		t.Errorf("OutputPath = %q, want dist/surface.json", cfg.Report.OutputPath)
	}
	if cfg.Snapshots.Enabled {
		t.Error("snapshots should be disabled per config file")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Report.OutputPath = "out/report.json"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.Report.OutputPath != "out/report.json" {
		t.Errorf("OutputPath = %q, want out/report.json", loaded.Report.OutputPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 1 }, true},
		{"empty output path", func(c *Config) { c.Report.OutputPath = "" }, true},
		{"snapshots without path", func(c *Config) { c.Snapshots.StorePath = "" }, true},
		{"snapshots disabled without path", func(c *Config) {
			c.Snapshots.Enabled = false
			c.Snapshots.StorePath = ""
		}, false},
		{"negative keepLast", func(c *Config) { c.Snapshots.KeepLast = -1 }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"json log format", func(c *Config) { c.Logging.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported config version"}
	want := "config error in field 'version': unsupported config version"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
