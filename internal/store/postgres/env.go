package postgres

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadConfigFromEnv loads Config from environment variables, with
// production-ready defaults mirroring the teacher's database config
// loader (pkg/database/config.go), adapted to a single DSN plus pool
// tuning knobs instead of discrete host/port/user/password fields.
func LoadConfigFromEnv() (Config, error) {
	dsn := os.Getenv("KATO_DB_DSN")
	if dsn == "" {
		return Config{}, fmt.Errorf("KATO_DB_DSN is required")
	}

	maxConns, err := strconv.Atoi(getEnvOrDefault("KATO_DB_MAX_CONNS", "25"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid KATO_DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnvOrDefault("KATO_DB_MIN_CONNS", "2"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid KATO_DB_MIN_CONNS: %w", err)
	}
	maxLifetime, err := time.ParseDuration(getEnvOrDefault("KATO_DB_CONN_MAX_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid KATO_DB_CONN_MAX_LIFETIME: %w", err)
	}
	maxIdleTime, err := time.ParseDuration(getEnvOrDefault("KATO_DB_CONN_MAX_IDLE_TIME", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid KATO_DB_CONN_MAX_IDLE_TIME: %w", err)
	}

	cfg := Config{
		DSN:             dsn,
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: maxLifetime,
		MaxConnIdleTime: maxIdleTime,
	}
	if cfg.MinConns > cfg.MaxConns {
		return Config{}, fmt.Errorf("KATO_DB_MIN_CONNS (%d) cannot exceed KATO_DB_MAX_CONNS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
