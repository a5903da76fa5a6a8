package cache

import (
	"context"
	"time"
)

// Cache is the interface for caching resolved recipient token sets.
// Keys are "tenant/channel"; values are the device tokens of every
// subscriber of that channel.
type Cache interface {
	// Get retrieves a token set from cache.
	// Returns the tokens and true if found, or nil and false if not found.
	Get(ctx context.Context, key string) ([]string, bool)

	// Set stores a token set in cache with TTL.
	Set(ctx context.Context, key string, tokens []string, ttl time.Duration) error

	// Delete removes a token set from cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	// Used to drop all of a tenant's entries when its tokens change.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all entries from cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error

	// Metrics returns cache statistics.
	Metrics() *Metrics
}

// Metrics holds cache performance statistics.
type Metrics struct {
	// Hits is the number of cache hits
	Hits uint64

	// Misses is the number of cache misses
	Misses uint64

	// KeysAdded is the number of keys added to cache
	KeysAdded uint64

	// KeysEvicted is the number of keys evicted from cache
	KeysEvicted uint64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (m *Metrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0.0
	}
	return float64(m.Hits) / float64(total)
}
