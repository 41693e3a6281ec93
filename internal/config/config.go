// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CAMPUS_TIMEZONE must resolve in minimal containers

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds every setting the server needs.
type Config struct {
	Port            string
	Store           string
	Postgres        PostgresConfig
	SQLitePath      string
	RedisAddr       string
	RedisPassword   string
	RedisChannel    string
	// RateLimit and RateBurst size the per-client limiter on mutating routes.
	RateLimit       float64
	RateBurst       int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	Location        *time.Location
	LogLevel        slog.Level
	LogFormat       string
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// DSN builds a libpq-compatible connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, falling back to
// local-development defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:  get("PORT", "8080"),
		Store: strings.ToLower(get("STORE", StorePostgres)),
		Postgres: PostgresConfig{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", "postgres"),
			DBName:   get("DB_NAME", "campusevents"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		SQLitePath:    get("SQLITE_PATH", "campusevents.db"),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisChannel:  get("REDIS_CHANNEL", "booking-events"),
		LogFormat:     strings.ToLower(get("LOG_FORMAT", "text")),
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreSQLite {
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreSQLite, cfg.Store)
	}

	maxConns, err := strconv.ParseInt(get("DB_MAX_CONNS", "20"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_CONNS: %w", err)
	}
	if maxConns < 1 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", maxConns)
	}
	cfg.Postgres.MaxConns = int32(maxConns)

	if cfg.RateLimit, err = strconv.ParseFloat(get("RATE_LIMIT_PER_SECOND", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SECOND: %w", err)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive, got %v", cfg.RateLimit)
	}
	if cfg.RateBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.RateBurst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", cfg.RateBurst)
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.Location, err = time.LoadLocation(get("CAMPUS_TIMEZONE", "Asia/Taipei"))
	if err != nil {
		return nil, fmt.Errorf("CAMPUS_TIMEZONE: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process-wide structured logger.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
