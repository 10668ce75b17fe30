package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache is a map-backed stand-in for RedisRepository with the same
// JSON round trip, expiry and version counters.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	entries  map[string]cacheEntry
	versions map[string]int64
}

type cacheEntry struct {
	data    []byte
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MemoryCache{
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
		versions: make(map[string]int64),
	}
}

// WithClock replaces the expiry clock, for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Load(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	e, ok := c.live(key)
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (c *MemoryCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *MemoryCache) StoreIf(_ context.Context, key string, version int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return nil
	}
	c.entries[key] = cacheEntry{data: data, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
		c.versions[k]++
	}
	c.mu.Unlock()
	return nil
}

// Has reports whether key holds an unexpired value.
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live(key)
	return ok
}

// live must be called with mu held.
func (c *MemoryCache) live(key string) (cacheEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return cacheEntry{}, false
	}
	return e, true
}
