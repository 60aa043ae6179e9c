package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// DefaultCapacity bounds the number of pending ingest jobs. Ingestion is
// exclusive, so a deep backlog only means callers are outpacing the index;
// rejecting early beats buffering raw document bytes without limit.
const DefaultCapacity = 16

// Verify interface compliance
var _ driven.IngestQueue = (*Queue)(nil)

// Queue is a bounded in-process ingest queue. It is the default backend:
// jobs carry raw document bytes and feed a single worker in the same
// process, so a buffered channel is all the machinery needed.
type Queue struct {
	mu     sync.Mutex
	jobs   chan *domain.IngestJob
	closed bool
}

// NewQueue creates a queue holding at most capacity pending jobs.
// capacity <= 0 falls back to the default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		jobs: make(chan *domain.IngestJob, capacity),
	}
}

// Enqueue adds a job without blocking. A full or closed queue is reported
// to the caller, who decides whether to retry.
func (q *Queue) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return domain.ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until a job is available, the queue closes, or ctx is
// cancelled.
func (q *Queue) Dequeue(ctx context.Context) (*domain.IngestJob, error) {
	select {
	case job, ok := <-q.jobs:
		if !ok {
			return nil, domain.ErrQueueClosed
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of jobs waiting.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Close stops the queue. Pending jobs are dropped; a blocked Dequeue
// returns ErrQueueClosed.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	for range q.jobs {
		// Drain so nothing half-read survives the shutdown.
	}
	return nil
}
