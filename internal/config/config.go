package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	Fetch    FetchConfig
	Postgres PostgresConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// AuthConfig holds the inbound-request authentication configuration.
// APIToken being empty is a server-side configuration error, reported as
// such to the caller instead of an auth failure.
type AuthConfig struct {
	APIToken string
}

// GeminiConfig holds the vision inference service configuration. An empty
// APIKey permanently disables inference for the process lifetime; the
// pipeline then serves synthetic results.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout int // seconds
}

// FetchConfig bounds the image download.
type FetchConfig struct {
	Timeout  int   // seconds
	MaxBytes int64 // response body cap
}

// PostgresConfig holds the optional assessment-history database. History is
// enabled only when a DSN is set.
type PostgresConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// Enabled reports whether assessment history is configured.
func (c *PostgresConfig) Enabled() bool {
	return c.DSN != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Auth: AuthConfig{
			APIToken: getEnv("API_TOKEN", ""),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsInt("GEMINI_TIMEOUT", 60),
		},
		Fetch: FetchConfig{
			Timeout:  getEnvAsInt("FETCH_TIMEOUT", 30),
			MaxBytes: getEnvAsInt64("FETCH_MAX_BYTES", 20<<20),
		},
		Postgres: PostgresConfig{
			DSN:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}
