// Package cache stores distilled results between runs.
//
// A [Cache] is a byte store with TTLs. Three backends are provided:
// [NullCache] (caching disabled), [FileCache] for the CLI and [RedisCache] for
// the HTTP server. [Results] layers typed access to analyzer results on top of
// any backend, keyed by a hash of the restore artifacts and the analysis
// options, and reports hits and misses to [observability.CacheHooks].
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the lifetime of a cached result when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored data and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
