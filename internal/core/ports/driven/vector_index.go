package driven

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// VectorIndex holds embedded chunks and answers similarity queries.
// Implementations own chunk persistence; the engine never mutates a chunk
// after upserting it.
type VectorIndex interface {
	// Upsert adds or replaces chunks, keyed by chunk id. Embeddings must
	// be populated.
	Upsert(ctx context.Context, chunks []*domain.Chunk) error

	// Search returns up to k chunks most similar to the embedding,
	// best first, scores populated.
	Search(ctx context.Context, embedding []float32, k int) ([]*domain.RankedChunk, error)

	// Delete removes chunks by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Clear drops every chunk in the index.
	Clear(ctx context.Context) error

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// HealthCheck verifies the index backend is available
	HealthCheck(ctx context.Context) error
}
