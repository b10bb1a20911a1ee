package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LedgerBackend selects where the chain-wide transaction log is kept.
type LedgerBackend string

const (
	LedgerMemory   LedgerBackend = "memory"
	LedgerPostgres LedgerBackend = "postgres"
)

// Config holds service configuration.
type Config struct {
	ServerAddr      string
	LogLevel        string
	LedgerBackend   LedgerBackend
	DatabaseURL     string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	backend := LedgerBackend(strings.ToLower(getenv("LEDGER_BACKEND", string(LedgerMemory))))
	switch backend {
	case LedgerMemory, LedgerPostgres:
	default:
		return nil, fmt.Errorf("unsupported LEDGER_BACKEND: %s", backend)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "foodchain")
		pass := getenv("POSTGRES_PASSWORD", "foodchain_pass")
		db := getenv("POSTGRES_DB", "foodchain")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	return &Config{
		ServerAddr:      getenv("SERVER_ADDR", "0.0.0.0:8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LedgerBackend:   backend,
		DatabaseURL:     dsn,
		ShutdownTimeout: parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}
