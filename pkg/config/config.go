package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EngineConfig holds tunables for the bookability and slot engines
type EngineConfig struct {
	// BookingLeadTime is the minimum gap between "now" and the earliest
	// offerable slot
	BookingLeadTime time.Duration

	// SlotBuffer is an optional gap inserted between consecutive slots
	SlotBuffer time.Duration

	// BookabilityCacheTTL bounds how long a payer's bookability response may
	// be served from Redis without revalidation
	BookabilityCacheTTL time.Duration

	// ReconcileInterval is how often the refresher compares the materialized
	// bookability snapshot against a live recompute
	ReconcileInterval time.Duration

	// ReconcileSampleSize is how many payers each reconciliation sweep checks
	ReconcileSampleSize int

	// FutureAcceptanceWindowDays is the horizon within which an approved
	// payer with a future effective date is shown as "future" rather than
	// "waitlist"
	FutureAcceptanceWindowDays int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "provider_bookability"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Engine: EngineConfig{
			BookingLeadTime:            time.Duration(getEnvAsInt("BOOKING_LEAD_TIME_MINUTES", 120)) * time.Minute,
			SlotBuffer:                 time.Duration(getEnvAsInt("SLOT_BUFFER_MINUTES", 0)) * time.Minute,
			BookabilityCacheTTL:        time.Duration(getEnvAsInt("BOOKABILITY_CACHE_TTL_SECONDS", 300)) * time.Second,
			ReconcileInterval:          time.Duration(getEnvAsInt("RECONCILE_INTERVAL_SECONDS", 900)) * time.Second,
			ReconcileSampleSize:        getEnvAsInt("RECONCILE_SAMPLE_SIZE", 20),
			FutureAcceptanceWindowDays: getEnvAsInt("FUTURE_ACCEPTANCE_WINDOW_DAYS", 21),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "provider-bookability"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
