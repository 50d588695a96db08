// Package config loads pressplan settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-level settings. Command-line flags
// override these.
type Config struct {
	GraphQLURL string        `env:"PRESSPLAN_GRAPHQL_URL"`
	DBPath     string        `env:"PRESSPLAN_DB"`
	OutDir     string        `env:"PRESSPLAN_OUT_DIR" envDefault:"public"`
	SiteURL    string        `env:"PRESSPLAN_SITE_URL" envDefault:"http://localhost:8000"`
	Timeout    time.Duration `env:"PRESSPLAN_TIMEOUT" envDefault:"30s"`
	BatchSize  int           `env:"PRESSPLAN_BATCH_SIZE" envDefault:"100"`
	LogLevel   string        `env:"PRESSPLAN_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.BatchSize <= 0 {
		return cfg, fmt.Errorf("PRESSPLAN_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultDBPath is ~/.pressplan/pressplan.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pressplan", "pressplan.db")
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return l, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
