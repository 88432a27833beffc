// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheStorage when a key is absent or its entry has expired
var ErrCacheMiss = errors.New("cache miss")

// CacheStorage is the persistent key/value engine behind the cache.
// Entries carry their own time-to-live; implementations must be safe for concurrent use.
type CacheStorage interface {
	// Get returns the raw value stored under key.
	//
	// Returns:
	//   - []byte: the stored value
	//   - error: ErrCacheMiss when absent or expired, or a storage error
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing entry.
	// A ttl of zero stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// RunGC reclaims space from expired and overwritten entries.
	RunGC(discardRatio float64) error

	// Close releases the underlying storage
	Close() error
}

// CacheService memoizes search and fetch results by serializing values to JSON.
// Storage failures are logged by the implementation and reported as a miss, so callers
// only ever see "hit" or "miss".
type CacheService interface {
	// Get decodes the entry under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set encodes value and stores it under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}
