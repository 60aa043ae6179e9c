package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// ResultCache is an optional read-through cache for comparison results,
// keyed on a request digest. A cache entry is only valid for the index
// generation it was computed against, so the engine clears it on ingest
// and on index clear.
type ResultCache interface {
	// Get returns the cached result or domain.ErrNotFound on miss
	Get(ctx context.Context, key string) (*domain.ComparisonResult, error)

	// Set stores a result with the given TTL
	Set(ctx context.Context, key string, result *domain.ComparisonResult, ttl time.Duration) error

	// Invalidate drops every cached result
	Invalidate(ctx context.Context) error
}
