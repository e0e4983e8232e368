// Package cache stores computed layouts and rendered artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the server, and [NullCache] when caching is disabled. Keys come from
// a [Keyer], so callers never build key strings by hand. A [ScopedKeyer]
// separates releases or tenants sharing one backend.
//
// A cache failure is never fatal to a caller: the pipeline logs it and
// recomputes.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLLayout applies to serialized layouts keyed by holdings and canvas.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered SVG, PNG, PDF and text output.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
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
