package driven

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// RerankParams tunes one rerank call.
type RerankParams struct {
	// TopK truncates the reordered list; 0 keeps all candidates.
	TopK int

	// Weight blends the reranker's score against the original retrieval
	// score where the implementation supports blending (0..1, higher
	// favours the reranker).
	Weight float64
}

// RerankProvider reorders retrieved candidates with a second, more
// expensive relevance scorer
type RerankProvider interface {
	// Score reorders candidates by relevance to the query, best first,
	// truncated per params. Candidates are not mutated; the returned
	// slice carries fresh RankedChunk values.
	Score(ctx context.Context, query string, candidates []*domain.RankedChunk, params RerankParams) ([]*domain.RankedChunk, error)

	// Name returns the scorer name (model or strategy)
	Name() string
}
