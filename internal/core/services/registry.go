package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// ArchitectureRegistry holds the fixed set of pipeline variants, keyed by
// architecture id. Variants are registered once at startup; lookups are
// concurrent-safe and listing preserves registration order.
type ArchitectureRegistry struct {
	mu        sync.RWMutex
	pipelines map[domain.ArchitectureID]RAGPipeline
	order     []domain.ArchitectureID
}

// NewArchitectureRegistry creates an empty registry.
func NewArchitectureRegistry() *ArchitectureRegistry {
	return &ArchitectureRegistry{
		pipelines: make(map[domain.ArchitectureID]RAGPipeline),
	}
}

// Register adds a pipeline variant. Re-registering an id replaces the
// pipeline but keeps its original position in the listing order.
func (r *ArchitectureRegistry) Register(pipeline RAGPipeline) error {
	if pipeline == nil {
		return fmt.Errorf("nil pipeline")
	}

	id := pipeline.Architecture().ID
	if id == "" {
		return fmt.Errorf("pipeline has no architecture id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelines[id]; !exists {
		r.order = append(r.order, id)
	}
	r.pipelines[id] = pipeline
	return nil
}

// Get returns the pipeline for an id, or ErrUnknownArchitecture.
func (r *ArchitectureRegistry) Get(id domain.ArchitectureID) (RAGPipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pipeline, ok := r.pipelines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownArchitecture, id)
	}
	return pipeline, nil
}

// Has reports whether an id is registered.
func (r *ArchitectureRegistry) Has(id domain.ArchitectureID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pipelines[id]
	return ok
}

// List returns the descriptors of all registered variants in registration
// order.
func (r *ArchitectureRegistry) List() []domain.Architecture {
	r.mu.RLock()
	defer r.mu.RUnlock()

	archs := make([]domain.Architecture, 0, len(r.order))
	for _, id := range r.order {
		archs = append(archs, r.pipelines[id].Architecture())
	}
	return archs
}
