package driving

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// IngestService owns the index lifecycle: ingestion batches, status and
// clearing
type IngestService interface {
	// Ingest runs one atomic ingestion batch and returns the resulting
	// index state. Fails with *domain.IndexError on document or provider
	// failure; the prior index state is restored unless the error reports
	// RollbackFailed.
	Ingest(ctx context.Context, docs []domain.RawDocument) (domain.IndexState, error)

	// IngestSource drains a DocumentSource and ingests the batch
	IngestSource(ctx context.Context, source driven.DocumentSource) (domain.IndexState, error)

	// IngestAsync enqueues a batch for the background worker and returns
	// the accepted job
	IngestAsync(ctx context.Context, docs []domain.RawDocument) (*domain.IngestJob, error)

	// Status returns the current index state snapshot; never blocks on
	// ingestion
	Status(ctx context.Context) domain.IndexState

	// Documents lists ingested documents, newest first
	Documents(ctx context.Context) ([]*domain.Document, error)

	// Clear drops all chunks and documents and resets the index to EMPTY
	Clear(ctx context.Context) error
}
