package services

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// Ensure SimplePipeline implements RAGPipeline
var _ RAGPipeline = (*SimplePipeline)(nil)

// SimplePipeline is the baseline variant: embed the query, search the
// vector index for the top-k chunks, answer from those.
type SimplePipeline struct {
	basePipeline
	descriptor domain.Architecture
	index      driven.VectorIndex
}

// NewSimplePipeline creates the baseline retrieval pipeline.
func NewSimplePipeline(index driven.VectorIndex, providers *runtime.Providers) *SimplePipeline {
	return &SimplePipeline{
		basePipeline: basePipeline{providers: providers},
		descriptor:   descriptorFor(domain.ArchitectureSimple),
		index:        index,
	}
}

// Architecture returns the variant descriptor.
func (p *SimplePipeline) Architecture() domain.Architecture {
	return p.descriptor
}

// Retrieve embeds the literal query and returns the top-k nearest chunks.
func (p *SimplePipeline) Retrieve(ctx context.Context, query string, params domain.QueryParams) (*domain.Retrieval, error) {
	vector, err := p.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks, err := p.index.Search(ctx, vector, params.K)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "vector-index", Op: "search", Err: err}
	}

	return &domain.Retrieval{Chunks: chunks}, nil
}

// descriptorFor looks up the startup descriptor for a variant id.
func descriptorFor(id domain.ArchitectureID) domain.Architecture {
	for _, arch := range domain.CoreArchitectures() {
		if arch.ID == id {
			return arch
		}
	}
	return domain.Architecture{ID: id}
}
