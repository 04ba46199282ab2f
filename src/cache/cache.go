// Package cache provides a typed key/value store with per-entry expiry.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is used by Set.
const DefaultTTL = 15 * time.Minute

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache memoizes values by key. Expired entries are dropped lazily when read;
// nothing sweeps in the background.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	items      map[K]entry[V]
	defaultTTL time.Duration
	now        Clock
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	ttl time.Duration
	now Clock
}

// WithTTL overrides DefaultTTL for Set.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(o *options) { o.now = c }
}

// New returns an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[K, V]{
		items:      make(map[K]entry[V]),
		defaultTTL: o.ttl,
		now:        o.now,
	}
}

// Get returns the value stored under k, or false when absent or expired.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[k]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.items, k)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores v under k with the cache's default TTL.
func (c *Cache[K, V]) Set(k K, v V) {
	c.SetWithTTL(k, v, c.defaultTTL)
}

// SetWithTTL stores v under k for ttl. A non-positive ttl uses the default.
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.items[k] = entry[V]{value: v, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes k.
func (c *Cache[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.items, k)
	c.mu.Unlock()
}

// Clear empties the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not read since expiry.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
