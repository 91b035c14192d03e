// Package cache implements the key-value cache used to memoize resolved auth
// contexts, permission lookups, and board/task read-model projections.
//
// # Backends
//
// Two backends implement the same contract:
//
//   - Redis (preferred): networked, shared between instances, SCAN-based
//     pattern invalidation.
//   - Memory: an expirable LRU used when Redis is unreachable at startup,
//     and as a local first tier when Redis is up.
//
// Callers must not depend on which backend is active. TTL expiry and
// prefix-based bulk delete hold identically under both.
//
// # Failure mode
//
// Backend errors are swallowed and reported as misses. The cache is a
// performance optimization only - the system stays correct, if slower, with
// the cache entirely disabled.
//
// # Invalidation
//
// InvalidatePattern accepts a literal prefix with a trailing "*" wildcard
// and removes matching keys from every active backend, so no stale
// permission or board/task entry survives a relevant mutation.
package cache
