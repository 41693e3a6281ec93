package config

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store != StorePostgres {
		t.Errorf("port=%s store=%s", cfg.Port, cfg.Store)
	}
	if cfg.Postgres.DBName != "campusevents" || cfg.Postgres.MaxConns != 20 {
		t.Errorf("postgres = %+v", cfg.Postgres)
	}
	if cfg.RateLimit != 5 || cfg.RateBurst != 10 {
		t.Errorf("rate=%v burst=%d", cfg.RateLimit, cfg.RateBurst)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown = %v", cfg.ShutdownTimeout)
	}
	if cfg.Location.String() != "Asia/Taipei" {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("log level=%v format=%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"STORE":                "SQLite",
		"SQLITE_PATH":          "/tmp/x.db",
		"CORS_ORIGINS":         "https://a.edu, https://b.edu",
		"RATE_LIMIT_PER_SECOND": "0.5",
		"CAMPUS_TIMEZONE":      "UTC",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "JSON",
		"DB_PASSWORD":          "secret",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/x.db" {
		t.Errorf("store=%s path=%s", cfg.Store, cfg.SQLitePath)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"https://a.edu", "https://b.edu"}) {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.RateLimit != 0.5 || cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Errorf("rate=%v level=%v format=%s", cfg.RateLimit, cfg.LogLevel, cfg.LogFormat)
	}
	if !strings.Contains(cfg.Postgres.DSN(), "password=secret") {
		t.Errorf("dsn = %s", cfg.Postgres.DSN())
	}
}

func TestFromEnvKeepsParseErrors(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"DB_MAX_CONNS": "many"}))
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("expected wrapped strconv.ErrSyntax, got %v", err)
	}
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"store":     {"STORE": "mysql"},
		"max conns": {"DB_MAX_CONNS": "0"},
		"rate":      {"RATE_LIMIT_PER_SECOND": "fast"},
		"zero rate": {"RATE_LIMIT_PER_SECOND": "0"},
		"burst":     {"RATE_LIMIT_BURST": "-1"},
		"shutdown":  {"SHUTDOWN_TIMEOUT": "soon"},
		"timezone":  {"CAMPUS_TIMEZONE": "Mars/Olympus"},
		"log level": {"LOG_LEVEL": "loud"},
		"format":    {"LOG_FORMAT": "xml"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(env(vars)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
