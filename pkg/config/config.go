package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	Env          string
	DBDriver     string
	PostgresURL  string
	SQLitePath   string
	HFAPIToken   string
	EmbedTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		PostgresURL:  getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:   getEnv("SQLITE_PATH", "notifly.db"),
		HFAPIToken:   getEnv("HF_API_TOKEN", ""),
		EmbedTimeout: getDurationEnv("EMBED_TIMEOUT_SECONDS", 10) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}
