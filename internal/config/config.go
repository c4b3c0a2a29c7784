package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete surfex configuration (v2 schema)
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Report    ReportConfig    `json:"report" mapstructure:"report"`
	Snapshots SnapshotsConfig `json:"snapshots" mapstructure:"snapshots"`
	Versions  VersionsConfig  `json:"versions" mapstructure:"versions"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// ReportConfig contains report generation configuration
type ReportConfig struct {
	OutputPath string `json:"outputPath" mapstructure:"outputPath"`
}

// SnapshotsConfig contains snapshot store configuration
type SnapshotsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	StorePath string `json:"storePath" mapstructure:"storePath"`
	KeepLast  int    `json:"keepLast" mapstructure:"keepLast"`
}

// VersionsConfig contains version-consistency check configuration
type VersionsConfig struct {
	Ignore     []string `json:"ignore" mapstructure:"ignore"`
	IncludeDev bool     `json:"includeDev" mapstructure:"includeDev"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  2,
		RepoRoot: ".",
		Report: ReportConfig{
			OutputPath: "api-report.json",
		},
		Snapshots: SnapshotsConfig{
			Enabled:   true,
			StorePath: ".surfex/snapshots.db",
			KeepLast:  50,
		},
		Versions: VersionsConfig{
			Ignore:     []string{"node_modules", "build", "dist", "vendor"},
			IncludeDev: false,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .surfex/config.json
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 2)
	v.SetDefault("repoRoot", ".")

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".surfex"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .surfex/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".surfex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 2 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Report.OutputPath == "" {
		return &ConfigError{Field: "report.outputPath", Message: "must not be empty"}
	}
	if c.Snapshots.Enabled && c.Snapshots.StorePath == "" {
		return &ConfigError{Field: "snapshots.storePath", Message: "required when snapshots are enabled"}
	}
	if c.Snapshots.KeepLast < 0 {
		return &ConfigError{Field: "snapshots.keepLast", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'human' or 'json'"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
