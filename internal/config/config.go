package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// AllowedOrigins lists origins accepted for WebSocket upgrades.
	// A single "*" entry allows any origin.
	AllowedOrigins []string

	// HistoryLimit caps the number of messages kept per room.
	// Zero means unbounded.
	HistoryLimit int
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3001"),
		Env:          getEnv("ENV", "development"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 0),
	}

	// Parse allowed origins (comma-separated), default allows any origin
	for _, entry := range strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, entry)
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
