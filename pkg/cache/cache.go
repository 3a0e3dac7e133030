// Package cache stores computed signatures and composites between runs.
//
// # Backends
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server and CI fleets
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are derived from content hashes by a [Keyer], never from file names,
// so renaming a fixture keeps its cache entry and editing it invalidates it.
// Every key embeds the parameters that change the cached value (grid size,
// sample size, target size, interpolator).
//
//	k := cache.NewDefaultKeyer()
//	key := k.SignatureKey(cache.Hash(imageBytes), cache.SignatureKeyOpts{GridSize: 50, SampleSize: 4})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs per entry kind.
const (
	// Signatures depend only on image content and parameters.
	TTLSignature = 30 * 24 * time.Hour

	// Composites are larger and cheaper to rebuild.
	TTLComposite = 7 * 24 * time.Hour
)

// NullCache disables caching: every Get misses and every Set is dropped.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
