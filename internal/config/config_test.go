package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"PRESSPLAN_GRAPHQL_URL", "PRESSPLAN_DB", "PRESSPLAN_OUT_DIR", "PRESSPLAN_SITE_URL",
		"PRESSPLAN_TIMEOUT", "PRESSPLAN_BATCH_SIZE", "PRESSPLAN_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GraphQLURL != "" || cfg.OutDir != "public" || cfg.SiteURL != "http://localhost:8000" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second || cfg.BatchSize != 100 || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if filepath.Base(cfg.DBPath) != "pressplan.db" || !strings.Contains(cfg.DBPath, ".pressplan") {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PRESSPLAN_GRAPHQL_URL", "https://wp.example.com/graphql")
	t.Setenv("PRESSPLAN_DB", "/tmp/x.db")
	t.Setenv("PRESSPLAN_TIMEOUT", "5s")
	t.Setenv("PRESSPLAN_BATCH_SIZE", "25")
	t.Setenv("PRESSPLAN_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GraphQLURL != "https://wp.example.com/graphql" || cfg.DBPath != "/tmp/x.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second || cfg.BatchSize != 25 || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"PRESSPLAN_BATCH_SIZE", "lots", "parse env:"},
		{"PRESSPLAN_BATCH_SIZE", "0", "must be positive"},
		{"PRESSPLAN_TIMEOUT", "soon", "parse env:"},
		{"PRESSPLAN_LOG_LEVEL", "loud", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
