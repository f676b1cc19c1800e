// Package cache provides bounded, TTL-aware caches. The accessibility
// engine holds two instances (connection and element snapshot) and the
// LLM intent recognizer holds one; each caller fixes its own size and TTL
// as constants. Fuzzy-match scores and target extraction are not cached.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a size-bounded LRU cache where every entry also expires
// after a fixed duration, whichever comes first.
type TTLCache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *lru.Cache[K, entry[V]]
	ttl time.Duration
}

// New creates a TTLCache holding at most size entries, each valid for
// ttl before it's treated as a miss.
func New[K comparable, V any](size int, ttl time.Duration) *TTLCache[K, V] {
	if size <= 0 {
		size = 1
	}
	c, _ := lru.New[K, entry[V]](size)
	return &TTLCache[K, V]{lru: c, ttl: ttl}
}

// Get returns the cached value for key, or (zero, false) if absent or
// expired. An expired hit is evicted.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's configured TTL.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// Remove evicts key if present.
func (c *TTLCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Len reports the number of entries currently cached, including any not
// yet lazily expired.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge empties the cache.
func (c *TTLCache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
