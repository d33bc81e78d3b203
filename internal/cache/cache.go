package cache

import (
	"fmt"
	"sync"
	"time"
)

// entry is a cached value with its expiration time.
type entry struct {
	value      interface{}
	expiration time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiration)
}

// Cache is a TTL memo table for fetch results keyed by
// (resource, scope, period). There is no eviction policy beyond
// overwrite-on-set and the whole-cache Clear used by forced refresh.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key builds the canonical cache key for a fetch.
func Key(resource, scope, period string) string {
	return fmt.Sprintf("%s:%s:%s", resource, scope, period)
}

// Get returns the cached value if present and younger than the TTL.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the configured TTL, overwriting any prior entry.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Clear drops every entry unconditionally, guaranteeing the next reads are
// cache misses.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len returns the number of entries including expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
