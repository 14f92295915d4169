package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Session       SessionConfig
	Upload        UploadConfig
	Database      DatabaseConfig
	History       HistoryConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

type SessionConfig struct {
	Secret        string
	MaxAgeSeconds int
	Secure        bool
	Dir           string // Filesystem session directory; empty means os.TempDir()
}

type UploadConfig struct {
	MaxBytes int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type HistoryConfig struct {
	Enabled       bool
	RetentionDays int
	PruneSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", ""),
			MaxAgeSeconds: getEnvAsInt("SESSION_MAX_AGE_SECONDS", 86400),
			Secure:        getEnvAsBool("SESSION_SECURE", false),
			Dir:           getEnv("SESSION_DIR", ""),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "sales-summary"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		History: HistoryConfig{
			Enabled:       getEnvAsBool("HISTORY_ENABLED", true),
			RetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 90),
			PruneSchedule: getEnv("HISTORY_PRUNE_SCHEDULE", "0 3 * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Session.Secret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	if cfg.Upload.MaxBytes <= 0 {
		return nil, errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	if cfg.History.Enabled && cfg.History.RetentionDays <= 0 {
		return nil, errors.New("HISTORY_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Level maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *ObservabilityConfig) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
