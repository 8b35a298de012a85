// Package config holds the lineup CLI settings. Environment variables set
// the defaults; command-line flags override them.
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config is the process-wide configuration.
type Config struct {
	// DB is the SQLite path. Empty means rosters come from files only and
	// commits are not persisted.
	DB                string `env:"LINEUP_DB"`
	Team              string `env:"LINEUP_TEAM"`
	Format            string `env:"LINEUP_FORMAT"              envDefault:"text"`
	LogLevel          string `env:"LINEUP_LOG_LEVEL"           envDefault:"warn"`
	MaxBatch          int    `env:"LINEUP_MAX_BATCH"           envDefault:"100"`
	AllowDirectCallUp bool   `env:"LINEUP_ALLOW_DIRECT_CALLUP" envDefault:"false"`
	Metrics           bool   `env:"LINEUP_METRICS"             envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxBatch < 0 {
		return fmt.Errorf("invalid max batch %d: must not be negative", c.MaxBatch)
	}
	return nil
}

// Level resolves LogLevel to a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
