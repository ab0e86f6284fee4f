// Package cache provides a generic in-memory key/value cache with per-entry
// TTL expiry. It backs both fetch paths of the dashboard: one instance tuned
// for quotes with a short window and one for fundamentals with a long window.
package cache

import (
	"sync"
	"time"
)

// entry holds a cached value together with the time it was stored.
// Entries are owned exclusively by the cache and removed lazily on the
// next lookup past expiry; there is no background sweep.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a concurrency-safe TTL cache. The zero value is not usable;
// construct instances with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache whose entries expire ttl after they were stored.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored value for key if it is present and fresh.
// An expired entry is evicted as a side effect and reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry since the read above.
		if cur, ok := c.entries[key]; ok && c.now().Sub(cur.storedAt) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores value under key with the current time, unconditionally
// overwriting any prior entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Delete removes a specific entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, including any that
// have expired but not yet been evicted.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the freshness window this cache was constructed with.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// GetOrCompute returns the cached value for key if fresh; otherwise it
// invokes compute, stores the result, and returns it.
//
// Concurrent misses for the same key may each invoke compute: there is no
// single-flight coalescing here. Upstream reads are idempotent, so a
// duplicated computation produces the same entry (last write wins).
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v)
	return v, nil
}

// Stats reports cache size and configured TTL.
type Stats struct {
	Size int           `json:"size"`
	TTL  time.Duration `json:"ttl"`
}

// GetStats returns cache statistics.
func (c *Cache[V]) GetStats() Stats {
	return Stats{Size: c.Len(), TTL: c.ttl}
}
