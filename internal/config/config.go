// Package config loads tool configuration from a TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings for a run. A single value is loaded up front
// and handed to each component at construction.
type Config struct {
	// SourceDirs are the library roots scanned for media files.
	SourceDirs []string `mapstructure:"source_dirs"`

	// DatabasePath is the SQLite file holding fingerprint records.
	DatabasePath string `mapstructure:"database_path"`

	// Workers is the fingerprinting pool size. 0 means one per core.
	Workers int `mapstructure:"workers"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	ProbeTimeoutSeconds   int `mapstructure:"probe_timeout_seconds"`
	ExtractTimeoutSeconds int `mapstructure:"extract_timeout_seconds"`

	// derived
	ProbeTimeout   time.Duration
	ExtractTimeout time.Duration
}

// Load reads configuration from path. A missing file is not an error:
// defaults plus MEDIA_STRUCTURER_* environment overrides apply, since
// every setting except the source roots has a usable default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("MEDIA_STRUCTURER")
	v.AutomaticEnv()

	v.SetDefault("database_path", "media_hashes.db")
	v.SetDefault("workers", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("probe_timeout_seconds", 10)
	v.SetDefault("extract_timeout_seconds", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ProbeTimeout = time.Duration(cfg.ProbeTimeoutSeconds) * time.Second
	cfg.ExtractTimeout = time.Duration(cfg.ExtractTimeoutSeconds) * time.Second
	return &cfg, nil
}
