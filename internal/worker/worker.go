package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/core/services"
)

// Worker drains the ingest queue and runs each job through the indexer.
// Ingestion is exclusive, so a single consumer goroutine is enough; a
// deeper pool would only fight over the ingest lock.
type Worker struct {
	queue   driven.IngestQueue
	indexer *services.Indexer
	logger  *slog.Logger

	backoff time.Duration

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Queue   driven.IngestQueue
	Indexer *services.Indexer
	Logger  *slog.Logger

	Backoff time.Duration // Pause after a queue error (default: 1s)
}

// NewWorker creates a new ingest worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Worker{
		queue:   cfg.Queue,
		indexer: cfg.Indexer,
		logger:  logger,
		backoff: backoff,
	}
}

// Start begins the consume loop. It returns immediately; the loop runs
// until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("ingest worker starting")
	go w.processLoop(ctx)
	return nil
}

// Stop gracefully stops the worker and waits for an in-flight job to
// finish its rollback-or-commit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("ingest worker stopped")
}

// Wait blocks until the worker loop exits.
func (w *Worker) Wait() {
	w.mu.RLock()
	doneCh := w.doneCh
	w.mu.RUnlock()
	if doneCh != nil {
		<-doneCh
	}
}

// processLoop dequeues and processes jobs until stopped.
func (w *Worker) processLoop(ctx context.Context) {
	defer close(w.doneCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	for {
		job, err := w.queue.Dequeue(runCtx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return
			case errors.Is(err, domain.ErrQueueClosed):
				w.logger.Info("ingest queue closed")
				return
			}

			w.logger.Error("failed to dequeue ingest job", "error", err)
			select {
			case <-time.After(w.backoff):
			case <-runCtx.Done():
				return
			}
			continue
		}

		w.processJob(runCtx, job)
	}
}

// processJob runs one batch. Failed batches are not retried: the indexer
// rolled them back and the caller decides whether to resubmit.
func (w *Worker) processJob(ctx context.Context, job *domain.IngestJob) {
	logger := w.logger.With("job_id", job.ID, "documents", len(job.Documents))
	logger.Info("processing ingest job")

	job.MarkProcessing()
	startTime := time.Now()

	state, err := w.indexer.Ingest(ctx, job.Documents)
	duration := time.Since(startTime)

	if err != nil {
		job.MarkFailed(err.Error())
		logger.Error("ingest job failed",
			"status", state.Status,
			"duration_seconds", duration.Seconds(),
			"error", err,
		)
		return
	}

	job.MarkCompleted()
	logger.Info("ingest job completed",
		"document_count", state.DocumentCount,
		"chunk_count", state.ChunkCount,
		"duration_seconds", duration.Seconds(),
	)
}

// Health reports worker liveness and queue depth.
type Health struct {
	Running    bool `json:"running"`
	QueueDepth int  `json:"queue_depth"`
}

// Health returns the current worker health.
func (w *Worker) Health() Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	return Health{
		Running:    running,
		QueueDepth: w.queue.Len(),
	}
}
