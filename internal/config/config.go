// Package config provides configuration for the medication service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Generative AI capability endpoint
	GenAIURL     string
	GenAIAPIKey  string
	GenAITimeout time.Duration

	// Async persistence
	PersistTimeout time.Duration

	// Optional Redis mirror for out-of-band notifications
	RedisAddr string

	// Safety score below which a verification is flagged for review
	ReviewThreshold int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:     getEnv("DATABASE_URL", "file:mediguard.db?cache=shared&mode=rwc"),
		GenAIURL:        getEnv("GENAI_URL", "http://localhost:4000"),
		GenAIAPIKey:     getEnv("GENAI_API_KEY", ""),
		GenAITimeout:    time.Duration(getEnvInt("GENAI_TIMEOUT_MS", 60000)) * time.Millisecond,
		PersistTimeout:  time.Duration(getEnvInt("PERSIST_TIMEOUT_MS", 10000)) * time.Millisecond,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		ReviewThreshold: getEnvInt("REVIEW_THRESHOLD", 50),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
