package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Registry RegistryConfig

	// Observability
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int
}

// AuthConfig holds JWT and auth resolution configuration
type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	Audience        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// ContextTTL bounds staleness of cached auth contexts. Minutes, not
	// hours: permission grants must propagate quickly.
	ContextTTL time.Duration

	// SessionFallback enables the legacy session-cookie user lookup when no
	// bearer token is present.
	SessionFallback bool
}

// RegistryConfig holds permission registry sync configuration
type RegistryConfig struct {
	// SyncSchedule is a cron expression for the periodic registry
	// reconciliation. Empty disables the periodic run (startup sync still
	// happens).
	SyncSchedule string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("TASKBOARD_HOST", "0.0.0.0"),
			Port:            getEnv("TASKBOARD_PORT", "8080"),
			ReadTimeout:     getEnvDuration("TASKBOARD_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("TASKBOARD_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("TASKBOARD_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("TASKBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("TASKBOARD_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("TASKBOARD_POSTGRES_URL", ""),
			MaxOpenConns: getEnvInt("TASKBOARD_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("TASKBOARD_POSTGRES_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("TASKBOARD_POSTGRES_CONN_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:        getEnv("TASKBOARD_REDIS_URL", ""),
			Password:   getEnv("TASKBOARD_REDIS_PASSWORD", ""),
			DB:         getEnvInt("TASKBOARD_REDIS_DB", 0),
			MaxRetries: getEnvInt("TASKBOARD_REDIS_MAX_RETRIES", 3),
			PoolSize:   getEnvInt("TASKBOARD_REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("TASKBOARD_JWT_SECRET", ""),
			Issuer:          getEnv("TASKBOARD_JWT_ISSUER", "taskboard"),
			Audience:        getEnv("TASKBOARD_JWT_AUDIENCE", "taskboard-api"),
			AccessTokenTTL:  getEnvDuration("TASKBOARD_ACCESS_TOKEN_TTL", 1*time.Hour),
			RefreshTokenTTL: getEnvDuration("TASKBOARD_REFRESH_TOKEN_TTL", 720*time.Hour),
			ContextTTL:      getEnvDuration("TASKBOARD_AUTH_CONTEXT_TTL", 5*time.Minute),
			SessionFallback: getEnvBool("TASKBOARD_SESSION_FALLBACK", false),
		},
		Registry: RegistryConfig{
			SyncSchedule: getEnv("TASKBOARD_REGISTRY_SYNC_SCHEDULE", "@hourly"),
		},
		LogLevel:       parseLogLevel(getEnv("TASKBOARD_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("TASKBOARD_METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.ContextTTL <= 0 || c.Auth.ContextTTL > time.Hour {
		return fmt.Errorf("auth context TTL must be positive and at most an hour")
	}
	return nil
}

func parseLogLevel(s string) observability.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return observability.DebugLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
