// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	TASKBOARD_HOST="0.0.0.0"
//	TASKBOARD_PORT="8080"
//	TASKBOARD_HEALTH_PORT="9090"
//	TASKBOARD_READ_TIMEOUT="15s"
//	TASKBOARD_WRITE_TIMEOUT="15s"
//	TASKBOARD_SHUTDOWN_TIMEOUT="30s"
//
// Database settings:
//
//	TASKBOARD_POSTGRES_URL="postgres://localhost/taskboard"
//	TASKBOARD_POSTGRES_MAX_CONNS="25"
//	TASKBOARD_POSTGRES_IDLE_CONNS="5"
//	TASKBOARD_POSTGRES_CONN_LIFETIME="5m"
//
// Cache settings:
//
//	TASKBOARD_REDIS_URL="redis://localhost:6379"  # empty disables the Redis tier
//	TASKBOARD_REDIS_POOL_SIZE="10"
//	TASKBOARD_REDIS_MAX_RETRIES="3"
//
// Auth settings:
//
//	TASKBOARD_JWT_SECRET=""  # required, minimum 32 bytes
//	TASKBOARD_JWT_ISSUER="taskboard"
//	TASKBOARD_JWT_AUDIENCE="taskboard-api"
//	TASKBOARD_ACCESS_TOKEN_TTL="1h"
//	TASKBOARD_REFRESH_TOKEN_TTL="720h"
//	TASKBOARD_AUTH_CONTEXT_TTL="5m"
//	TASKBOARD_SESSION_FALLBACK="false"
//
// Registry and observability settings:
//
//	TASKBOARD_REGISTRY_SYNC_SCHEDULE="@hourly"  # cron expression, empty disables
//	TASKBOARD_LOG_LEVEL="info"  # debug, info, warn, error
//	TASKBOARD_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Context TTL: %s\n", cfg.Auth.ContextTTL)
//
// # Related Packages
//
//   - pkg/auth: Uses auth configuration
//   - pkg/cache: Uses Redis configuration
//   - pkg/observability: Uses log level and metrics settings
package config
