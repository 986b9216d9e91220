package config

import (
	"os"
	"strconv"
	"time"
)

// Config is loaded from the environment with sensible local-first defaults:
// a sqlite file next to the binary and an in-process session store.
type Config struct {
	Port        string
	DatabaseDSN string
	RedisAddr   string
	SessionTTL  time.Duration
	Env         string
	LogLevel    string
}

// Load reads configuration from environment variables. Precedence: explicit
// env var > .env file (loaded by main) > default.
func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "zapinvoice.db"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		SessionTTL:  getDuration("SESSION_TTL", 24*time.Hour),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain integers are read as hours
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Hour
	}
	return def
}
