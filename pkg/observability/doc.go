// Package observability provides structured logging, Prometheus metrics,
// health checks, and graceful shutdown for the Taskboard service.
//
// The logger is a thin wrapper over stdlib slog that emits JSON. Metrics
// cover the hot paths: HTTP requests, auth context resolution, cache
// hits/misses, and domain event dispatch. The health checker treats
// Postgres as required and Redis as optional (the cache layer degrades to
// an in-process store when Redis is down).
package observability
