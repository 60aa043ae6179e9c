package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

const (
	defaultKey      = "raglab:ingest:jobs"
	defaultCapacity = 16

	// How long one blocking pop waits before re-checking the context.
	pollInterval = time.Second
)

// Verify interface compliance
var _ driven.IngestQueue = (*Queue)(nil)

// Queue is a Redis-list-backed ingest queue for deployments that split the
// API and the worker into separate processes. Jobs are pushed as JSON with
// the raw document bytes inline, so pending batches survive a worker
// restart. Delivery is at-most-once: a batch is never retried, matching
// the no-retry ingestion contract.
type Queue struct {
	client   *redis.Client
	key      string
	capacity int64
}

// QueueConfig holds configuration for the Redis queue.
type QueueConfig struct {
	Client   *redis.Client
	Key      string // List key (default: raglab:ingest:jobs)
	Capacity int    // Max pending jobs (default: 16)
}

// NewQueue creates a Redis-backed ingest queue.
func NewQueue(cfg QueueConfig) (*Queue, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}

	key := cfg.Key
	if key == "" {
		key = defaultKey
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Queue{
		client:   cfg.Client,
		key:      key,
		capacity: int64(capacity),
	}, nil
}

// wireDocument carries raw content over the wire. The domain type keeps
// content out of its JSON form, so the queue encodes it explicitly.
type wireDocument struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
	Pages    int    `json:"pages,omitempty"`
}

// wireJob is the queue's serialized job form.
type wireJob struct {
	ID         string         `json:"id"`
	Documents  []wireDocument `json:"documents"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// Enqueue pushes a job onto the list. The capacity check is best-effort;
// concurrent producers can briefly overshoot it.
func (q *Queue) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	pending, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return fmt.Errorf("failed to check queue depth: %w", err)
	}
	if pending >= q.capacity {
		return domain.ErrQueueFull
	}

	payload, err := json.Marshal(encodeJob(job))
	if err != nil {
		return fmt.Errorf("failed to encode ingest job: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue ingest job: %w", err)
	}
	return nil
}

// Dequeue pops the oldest job, blocking in short intervals so context
// cancellation is honored promptly.
func (q *Queue) Dequeue(ctx context.Context) (*domain.IngestJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, pollInterval, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to dequeue ingest job: %w", err)
		}

		// BRPOP returns [key, value].
		return decodeJob([]byte(res[1]))
	}
}

// Len reports the number of jobs waiting. Best-effort: a Redis error
// reads as an empty queue.
func (q *Queue) Len() int {
	pending, err := q.client.LLen(context.Background(), q.key).Result()
	if err != nil {
		return 0
	}
	return int(pending)
}

// Close is a no-op: pending jobs stay in Redis for the next worker, and
// the client's lifecycle belongs to the process that opened it.
func (q *Queue) Close() error {
	return nil
}

func encodeJob(job *domain.IngestJob) wireJob {
	docs := make([]wireDocument, len(job.Documents))
	for i, doc := range job.Documents {
		docs[i] = wireDocument{
			Filename: doc.Filename,
			Content:  doc.Content,
			Pages:    doc.Pages,
		}
	}
	return wireJob{
		ID:         job.ID,
		Documents:  docs,
		EnqueuedAt: job.EnqueuedAt,
	}
}

func decodeJob(payload []byte) (*domain.IngestJob, error) {
	var wire wireJob
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode ingest job: %w", err)
	}

	docs := make([]domain.RawDocument, len(wire.Documents))
	for i, doc := range wire.Documents {
		docs[i] = domain.RawDocument{
			Filename: doc.Filename,
			Content:  doc.Content,
			Pages:    doc.Pages,
		}
	}

	return &domain.IngestJob{
		ID:         wire.ID,
		Documents:  docs,
		Status:     domain.JobStatusPending,
		EnqueuedAt: wire.EnqueuedAt,
	}, nil
}
