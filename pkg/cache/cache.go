// Package cache stores opaque byte values with a time to live.
//
// The API client caches search results and fetched networks through the
// [Cache] interface. Backends:
//
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [MemoryCache]: an in-process LRU, for the chart server
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: never stores anything
//
// [Open] selects a backend from configuration.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A zero ttl means the entry
// does not expire (or, for [MemoryCache], uses the cache default).
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
