// Package cache stores catalog query results keyed by the query tuple.
// Cached values are ordered event ID lists; a miss or an error is always safe
// because callers recompute the result from the repository.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores ordered event ID lists under a query key.
type Cache interface {
	// Get returns the IDs stored under key, or false on a miss.
	Get(ctx context.Context, key string) ([]string, bool)
	// Set stores ids under key.
	Set(ctx context.Context, key string, ids []string)
	// Stats returns cache statistics.
	Stats() Stats
}

// Stats holds cache performance counters.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}

type entry struct {
	ids        []string
	expiration time.Time
}

// MemoryCache is an in-process Cache with TTL and a bounded number of entries.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stats      counters
}

// NewMemoryCache creates an in-memory cache. A non-positive maxEntries
// defaults to 1024.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		if ok {
			delete(c.entries, key)
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return append([]string(nil), e.ids...), true
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(_ context.Context, key string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}
	c.entries[key] = entry{ids: append([]string(nil), ids...), expiration: exp}
	c.stats.sets.Add(1)
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	return c.stats.snapshot()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) expired(e entry) bool {
	return !e.expiration.IsZero() && c.now().After(e.expiration)
}

// evictLocked drops expired entries, or one arbitrary entry if none expired.
func (c *MemoryCache) evictLocked() {
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]string, bool) { return nil, false }

// Set discards the value.
func (Nop) Set(context.Context, string, []string) {}

// Stats returns zero counters.
func (Nop) Stats() Stats { return Stats{} }
