// Package cache provides byte-oriented caches for rendered artifacts and
// computed layouts.
//
// Backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: a bounded, expiring in-process LRU
//   - [RedisCache]: Redis with a local TinyLFU layer, for servers
//   - [NullCache]: stores nothing
//
// Keys come from a [Keyer], which hashes the document together with every
// option that affects the output, so a key changes whenever the artifact
// would.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
