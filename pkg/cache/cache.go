// Package cache stores scan results so repeated runs over the same source
// skip the walk.
//
// Values are opaque bytes (in practice, encoded snapshots). Backends:
//   - [FileCache]: one JSON file per key under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes everything that affects the cached
// value so a change in options never serves a stale tree.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok=false with a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
