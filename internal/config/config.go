package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	HTTPPort  string
	JWTSecret string

	SweepIntervalMinutes int
	LogLevel             string
}

// Load reads the configuration from environment variables, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "caredesk"),
		DBPassword: getEnv("DB_PASSWORD", "caredesk"),
		DBName:     getEnv("DB_NAME", "caredeskdb"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),

		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 60),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// SweepInterval is how often the escalation sweeper runs.
func (c *Config) SweepInterval() time.Duration {
	if c.SweepIntervalMinutes <= 0 {
		return DefaultSweepInterval
	}
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
