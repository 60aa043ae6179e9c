package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.ResultCache = (*ResultCache)(nil)

const resultKeyPrefix = "raglab:result:"

// ResultCache implements driven.ResultCache using Redis.
// Entries expire via Redis TTL; Invalidate sweeps the key prefix so a
// fresh ingest never serves results computed against the old index.
type ResultCache struct {
	client *redis.Client
}

// NewResultCache creates a Redis-backed ResultCache
func NewResultCache(client *redis.Client) *ResultCache {
	return &ResultCache{client: client}
}

// Get retrieves a cached comparison result, or domain.ErrNotFound on a
// miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.ComparisonResult, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached result: %w", err)
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	return &result, nil
}

// Set stores a comparison result with the given TTL. A nil result or
// non-positive TTL is ignored rather than cached forever.
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.ComparisonResult, ttl time.Duration) error {
	if result == nil || ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, resultKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Invalidate drops every cached result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, resultKeyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached results: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached results: %w", err)
		}
	}
	return nil
}
