package driven

import (
	"context"
)

// EmbeddingProvider generates text embeddings
type EmbeddingProvider interface {
	// Embed generates embeddings for multiple texts
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a query or a hypothetical
	// document used as a query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding provider is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the provider
	Close() error
}
