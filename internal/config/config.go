package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseDriver string
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string
	StaticDir   string

	// Replay
	FrameCacheTTLMinutes int
	ReplaySpeed          float64
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/billiards?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis; empty disables the frame cache and shot events
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		StaticDir:   getEnv("STATIC_DIR", "./public"),

		// Replay
		FrameCacheTTLMinutes: getEnvInt("FRAME_CACHE_TTL_MINUTES", 60),
		ReplaySpeed:          getEnvFloat("REPLAY_SPEED", 1.0),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
