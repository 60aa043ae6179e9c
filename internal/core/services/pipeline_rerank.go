package services

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// DefaultRerankPoolMultiplier sizes the first-stage candidate pool as a
// multiple of k, so the reranker has more to choose from than the final
// context holds.
const DefaultRerankPoolMultiplier = 2

// Ensure RerankPipeline implements RAGPipeline
var _ RAGPipeline = (*RerankPipeline)(nil)

// RerankPipeline is the two-stage variant: a wide vector search followed
// by a rerank pass that rescores the candidates and truncates to k.
type RerankPipeline struct {
	basePipeline
	descriptor     domain.Architecture
	index          driven.VectorIndex
	poolMultiplier int
}

// NewRerankPipeline creates the two-stage retrieval pipeline.
// poolMultiplier <= 1 falls back to the default.
func NewRerankPipeline(index driven.VectorIndex, providers *runtime.Providers, poolMultiplier int) *RerankPipeline {
	if poolMultiplier <= 1 {
		poolMultiplier = DefaultRerankPoolMultiplier
	}
	return &RerankPipeline{
		basePipeline:   basePipeline{providers: providers},
		descriptor:     descriptorFor(domain.ArchitectureReranking),
		index:          index,
		poolMultiplier: poolMultiplier,
	}
}

// Architecture returns the variant descriptor.
func (p *RerankPipeline) Architecture() domain.Architecture {
	return p.descriptor
}

// Retrieve searches for a k*multiplier candidate pool, then lets the
// rerank provider rescore and truncate it to k.
func (p *RerankPipeline) Retrieve(ctx context.Context, query string, params domain.QueryParams) (*domain.Retrieval, error) {
	vector, err := p.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	pool := params.K * p.poolMultiplier
	candidates, err := p.index.Search(ctx, vector, pool)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "vector-index", Op: "search", Err: err}
	}

	if len(candidates) == 0 {
		return &domain.Retrieval{}, nil
	}

	reranker := p.providers.Rerank()
	if reranker == nil {
		return nil, &domain.ProviderError{Provider: "rerank", Op: "score", Err: domain.ErrServiceUnavailable}
	}

	ranked, err := reranker.Score(ctx, query, candidates, driven.RerankParams{
		TopK:   params.K,
		Weight: params.RerankWeight,
	})
	if err != nil {
		return nil, &domain.ProviderError{Provider: "rerank", Op: "score", Err: err}
	}

	return &domain.Retrieval{Chunks: ranked}, nil
}
