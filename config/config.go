package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	CacheType     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment, falling back to defaults
// that match local development.
func Load() Config {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DBPath:        fallback(os.Getenv("DB_PATH"), "./diet_service.db"),
		MigrationsDir: fallback(os.Getenv("MIGRATIONS_DIR"), "./database/migrations"),
		CacheType:     fallback(os.Getenv("CACHE_TYPE"), "redis"),
		RedisAddr:     fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		cfg.RedisDB = n
	}

	return cfg
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
