package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Remote database configuration. Absence of a remote configuration is
	// not an error: the service runs local-only against the fallback store.
	DBType            string // postgres, mysql, sqlserver, sqlite
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Local fallback store (SQLite file path)
	LocalDBPath string

	// Weekly calorie budget used when a user never set one
	DefaultWeeklyBudget int
}

// Load loads configuration from the environment, honoring an optional .env file
func Load() (*Config, error) {
	// Missing .env is fine; the environment wins either way
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		DBType:              getEnv("DB_TYPE", ""),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBDatabase:          getEnv("DB_DATABASE", ""),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		LocalDBPath:         getEnv("LOCAL_DB_PATH", "teacal-local.db"),
		DefaultWeeklyBudget: getEnvAsInt("DEFAULT_WEEKLY_BUDGET", 2000),
	}

	return cfg, nil
}

// RemoteConfigured reports whether a remote store was configured. The mode
// is decided once at startup; there is no runtime transition into or out
// of local-only operation.
func (c *Config) RemoteConfigured() bool {
	return c.DBType != "" && c.DBDatabase != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
