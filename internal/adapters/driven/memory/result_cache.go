package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// DefaultCacheEntries caps the result cache. The engine invalidates the
// whole cache on every ingest, so the cap only matters for read-heavy
// gaps between batches.
const DefaultCacheEntries = 512

type cacheEntry struct {
	result    *domain.ComparisonResult
	expiresAt time.Time
}

// ResultCache keeps comparison results in a map with lazy TTL expiry.
// Cached results are treated as immutable; callers get the stored
// pointer back.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
}

// NewResultCache creates an empty cache. maxEntries <= 0 uses the default.
func NewResultCache(maxEntries int) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &ResultCache{
		entries:    make(map[string]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached result or domain.ErrNotFound on miss or expiry.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.ComparisonResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, domain.ErrNotFound
	}
	return entry.result, nil
}

// Set stores a result. When the cache is full it sweeps expired entries
// first, then evicts arbitrary ones until there is room.
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.ComparisonResult, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil || ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.sweepLocked()
		for k := range c.entries {
			if len(c.entries) < c.maxEntries {
				break
			}
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops every cached result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	return nil
}

func (c *ResultCache) sweepLocked() {
	now := time.Now()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
}
