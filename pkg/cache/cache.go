// Package cache stores rendered profile output keyed by the content of
// the profile and the render options that produced it.
//
// Rendering is deterministic, so a cache entry never goes stale with
// respect to its inputs; TTLs exist only to bound disk or Redis usage.
// Three backends are provided:
//   - file: directory-backed, for CLI usage
//   - redis: shared cache for the HTTP server
//   - null: disables caching
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found; an expired or missing entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores it without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RenderKey builds the cache key for one render call from the raw
// profile document and the options that shape the output. Any
// JSON-serializable options value works; unequal options must produce
// unequal keys.
func RenderKey(profileData []byte, options any) string {
	return hashKey("render", Hash(profileData), options)
}
