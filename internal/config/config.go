// Package config resolves runtime settings from command-line flags, falling
// back to environment variables (optionally loaded from a .env file).
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr     = "0.0.0.0:8080"
	defaultSyncInterval = 30 * time.Second
	defaultSSLMode      = "disable"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnString builds a lib/pq connection URL.
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type SyncConfig struct {
	Interval         time.Duration
	PassTimeout      time.Duration
	ReconcileCenters bool
}

type Config struct {
	Database DatabaseConfig
	Sync     SyncConfig
	HTTPAddr string
	LogLevel slog.Level
	// Args holds the positional arguments left after the flags.
	Args []string
}

// Load parses args with env fallbacks. Flags win over the environment.
func Load(name string, args []string) (*Config, error) {
	var (
		cfg                      Config
		interval, timeout, level string
		centers                  string
	)

	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&cfg.Database.Host, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	fs.StringVar(&cfg.Database.Port, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&cfg.Database.User, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&cfg.Database.Password, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&cfg.Database.Name, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	fs.StringVar(&cfg.Database.SSLMode, "db-sslmode", envOr("POSTGRES_SSLMODE", defaultSSLMode), "Database SSL mode")

	fs.StringVar(&cfg.HTTPAddr, "addr", envOr("HTTP_ADDR", defaultHTTPAddr), "HTTP listen address")
	fs.StringVar(&interval, "sync-interval", envOr("SYNC_INTERVAL", defaultSyncInterval.String()), "Delay between sync passes")
	fs.StringVar(&timeout, "sync-pass-timeout", envOr("SYNC_PASS_TIMEOUT", "0s"), "Timeout of a single sync pass (0 disables)")
	fs.StringVar(&centers, "sync-centers", envOr("SYNC_CENTERS", "true"), "Also reconcile voting center totals")
	fs.StringVar(&level, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if cfg.Sync.Interval, err = time.ParseDuration(interval); err != nil {
		return nil, fmt.Errorf("invalid sync interval %q: %w", interval, err)
	}
	if cfg.Sync.Interval <= 0 {
		return nil, errors.New("sync interval must be positive")
	}
	if cfg.Sync.PassTimeout, err = time.ParseDuration(timeout); err != nil {
		return nil, fmt.Errorf("invalid sync pass timeout %q: %w", timeout, err)
	}
	if cfg.Sync.ReconcileCenters, err = strconv.ParseBool(centers); err != nil {
		return nil, fmt.Errorf("invalid sync centers flag %q: %w", centers, err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if cfg.Database.Host == "" {
		return nil, errors.New("database host required (use -db-host or POSTGRES_HOST)")
	}
	if cfg.Database.Name == "" {
		return nil, errors.New("database name required (use -db-name or POSTGRES_DB)")
	}

	cfg.Args = fs.Args()

	return &cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
