// Package cache provides the storage backends used to memoise pipeline
// results and external classifier answers.
//
// All backends implement [Cache], a byte-oriented key/value store with
// optional expiry:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry, for the CLI
//   - [SQLiteCache]: a single local database file
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: document store with a TTL index
//
// Keys are produced by a [Keyer] so that the CLI and the HTTP server share
// one naming scheme. Use [Open] to build a backend from [Options].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry. A zero ttl
// stores the entry without expiry. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the stored data and true, or false on a miss. Expired and
	// unreadable entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default entry lifetimes.
const (
	// TTLResult is the lifetime of a resolved document.
	TTLResult = 7 * 24 * time.Hour

	// TTLClassification is the lifetime of an external classifier answer.
	TTLClassification = 30 * 24 * time.Hour
)
