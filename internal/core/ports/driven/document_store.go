package driven

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// DocumentStore records ingested documents for status reporting and
// listing. The chunk payloads themselves live in the VectorIndex.
type DocumentStore interface {
	// SaveBatch saves all documents of one ingestion batch atomically
	SaveBatch(ctx context.Context, docs []*domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents, newest first
	List(ctx context.Context) ([]*domain.Document, error)

	// DeleteBatch deletes documents by ID (batch rollback)
	DeleteBatch(ctx context.Context, ids []string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)

	// Clear removes every document
	Clear(ctx context.Context) error
}
