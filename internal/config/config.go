package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickHz             int
	BroadcastHz        int
	DefaultArenaWidth  float64
	DefaultArenaHeight float64

	// Idle reaper
	IdleTimeoutSeconds int
	IdlePollSeconds    int

	// Security
	JWTSecret              string
	SessionTokenTTLMinutes int
	AdminTokenHash         string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/tiltball?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickHz:             getEnvInt("TICK_HZ", 60),
		BroadcastHz:        getEnvInt("BROADCAST_HZ", 20),
		DefaultArenaWidth:  getEnvFloat("DEFAULT_ARENA_WIDTH", 390),
		DefaultArenaHeight: getEnvFloat("DEFAULT_ARENA_HEIGHT", 844),

		// Idle reaper
		IdleTimeoutSeconds: getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdlePollSeconds:    getEnvInt("IDLE_POLL_SECONDS", 15),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 120),
		AdminTokenHash:         getEnv("ADMIN_TOKEN_HASH", ""),
	}
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
		if f, err := strconv.ParseFloat(value, 64); err == nil {
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
