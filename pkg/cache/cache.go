// Package cache provides byte-level caching for downloaded package indexes.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: entries in Redis, shared between server replicas
//   - [NullCache]: never stores anything (--no-cache)
//
// All backends implement [Cache]. Keys are produced by a [Keyer] so that the
// same index fetched through different backends maps to the same key.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
