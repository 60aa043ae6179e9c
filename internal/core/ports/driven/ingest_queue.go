package driven

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// IngestQueue hands ingest jobs from the API layer to the background
// worker. Jobs carry raw document bytes, so the queue stays in-process;
// ingestion is exclusive anyway, so one consumer is enough.
type IngestQueue interface {
	// Enqueue adds a job. Returns an error when the queue is full or closed.
	Enqueue(ctx context.Context, job *domain.IngestJob) error

	// Dequeue blocks until a job is available or ctx is cancelled.
	Dequeue(ctx context.Context) (*domain.IngestJob, error)

	// Len reports the number of jobs waiting.
	Len() int

	// Close stops the queue; pending jobs are dropped.
	Close() error
}
