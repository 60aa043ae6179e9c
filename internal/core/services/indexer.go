package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driving"
	"github.com/custodia-labs/raglab-core/internal/postprocessors"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// Ensure Indexer implements IngestService
var _ driving.IngestService = (*Indexer)(nil)

// Indexer owns the ingestion lifecycle. A batch runs in two phases:
// prepare (chunk and embed every document, no index writes) and commit
// (upsert chunks, save document records, flip state to READY). Any
// failure rolls the batch back so the prior index contents survive;
// only a failed rollback leaves the index FAILED and in need of a clear.
//
// Ingestion is exclusive - one batch in flight, guarded by the ingest
// lock - while queries keep reading the prior contents concurrently.
type Indexer struct {
	index     driven.VectorIndex
	documents driven.DocumentStore
	lock      driven.IngestLock
	queue     driven.IngestQueue
	cache     driven.ResultCache
	providers *runtime.Providers
	status    *StatusTracker
	pipeline  *postprocessors.Pipeline
	logger    *slog.Logger

	lockTTL        time.Duration
	embedBatchSize int
}

// IndexerConfig holds dependencies for the Indexer.
type IndexerConfig struct {
	Index     driven.VectorIndex
	Documents driven.DocumentStore
	Lock      driven.IngestLock
	Queue     driven.IngestQueue  // Optional: enables IngestAsync
	Cache     driven.ResultCache  // Optional: invalidated on every index mutation
	Providers *runtime.Providers
	Status    *StatusTracker
	Pipeline  *postprocessors.Pipeline // Optional: defaults to DefaultPipeline
	Logger    *slog.Logger

	LockTTL        time.Duration // Ingest lock TTL (default: 10m)
	EmbedBatchSize int           // Texts per embedding call (default: 32)
}

// NewIndexer creates a new Indexer.
func NewIndexer(cfg IndexerConfig) *Indexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = postprocessors.DefaultPipeline()
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}

	embedBatchSize := cfg.EmbedBatchSize
	if embedBatchSize <= 0 {
		embedBatchSize = 32
	}

	return &Indexer{
		index:          cfg.Index,
		documents:      cfg.Documents,
		lock:           cfg.Lock,
		queue:          cfg.Queue,
		cache:          cfg.Cache,
		providers:      cfg.Providers,
		status:         cfg.Status,
		pipeline:       pipeline,
		logger:         logger,
		lockTTL:        lockTTL,
		embedBatchSize: embedBatchSize,
	}
}

// preparedDoc is one document's chunks, embedded and ready to commit.
type preparedDoc struct {
	doc    *domain.Document
	chunks []*domain.Chunk
}

// Ingest runs one atomic ingestion batch.
func (x *Indexer) Ingest(ctx context.Context, docs []domain.RawDocument) (domain.IndexState, error) {
	startTime := time.Now()

	if err := validateBatch(docs); err != nil {
		return x.status.State(), err
	}

	embedder := x.providers.Embedding()
	if embedder == nil {
		return x.status.State(), &domain.IndexError{Stage: "embed", Err: domain.ErrServiceUnavailable}
	}

	acquired, err := x.lock.TryAcquire(ctx, x.lockTTL)
	if err != nil {
		return x.status.State(), &domain.IndexError{Stage: "lock", Err: err}
	}
	if !acquired {
		return x.status.State(), domain.ErrIngestInProgress
	}
	defer func() {
		if err := x.lock.Release(context.WithoutCancel(ctx)); err != nil {
			x.logger.Warn("failed to release ingest lock", "error", err)
		}
	}()

	if err := x.status.BeginIngest(); err != nil {
		return x.status.State(), err
	}

	x.logger.Info("starting ingest", "documents", len(docs))

	// Phase 1: chunk and embed every document. No index writes happen
	// here, so a failure aborts with nothing to roll back.
	prepared, totalChunks, err := x.prepare(ctx, embedder, docs, startTime)
	if err != nil {
		x.status.AbortIngest()
		x.logger.Error("ingest failed", "error", err, "duration_seconds", time.Since(startTime).Seconds())
		return x.status.State(), err
	}

	// Phase 2: commit. From the first upsert on, a failure must undo the
	// batch's writes to restore the prior contents.
	if err := x.commit(ctx, prepared); err != nil {
		x.logger.Error("ingest failed", "error", err, "duration_seconds", time.Since(startTime).Seconds())
		return x.status.State(), err
	}

	took := time.Since(startTime)
	x.status.CompleteIngest(len(prepared), totalChunks, took)
	x.invalidateCache(ctx)

	x.logger.Info("ingest completed",
		"documents", len(prepared),
		"chunks", totalChunks,
		"duration_seconds", took.Seconds(),
	)

	return x.status.State(), nil
}

// IngestSource drains a DocumentSource and ingests the batch.
func (x *Indexer) IngestSource(ctx context.Context, source driven.DocumentSource) (domain.IndexState, error) {
	docs, err := source.Documents(ctx)
	if err != nil {
		return x.status.State(), &domain.IndexError{Stage: "read", Err: err}
	}
	return x.Ingest(ctx, docs)
}

// IngestAsync enqueues a batch for the background worker.
func (x *Indexer) IngestAsync(ctx context.Context, docs []domain.RawDocument) (*domain.IngestJob, error) {
	if x.queue == nil {
		return nil, fmt.Errorf("background ingestion not configured")
	}
	if err := validateBatch(docs); err != nil {
		return nil, err
	}

	job := domain.NewIngestJob(docs)
	if err := x.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue ingest job: %w", err)
	}

	x.logger.Info("ingest job enqueued", "job_id", job.ID, "documents", len(docs))
	return job, nil
}

// Status returns the current index state snapshot.
func (x *Indexer) Status(_ context.Context) domain.IndexState {
	return x.status.State()
}

// Documents lists ingested documents, newest first.
func (x *Indexer) Documents(ctx context.Context) ([]*domain.Document, error) {
	return x.documents.List(ctx)
}

// Clear drops all chunks and documents and resets the index to EMPTY.
// Chunk ids from before the clear are never reissued because document ids
// are random per batch.
func (x *Indexer) Clear(ctx context.Context) error {
	acquired, err := x.lock.TryAcquire(ctx, x.lockTTL)
	if err != nil {
		return &domain.IndexError{Stage: "lock", Err: err}
	}
	if !acquired {
		return domain.ErrIngestInProgress
	}
	defer func() {
		if err := x.lock.Release(context.WithoutCancel(ctx)); err != nil {
			x.logger.Warn("failed to release ingest lock", "error", err)
		}
	}()

	if err := x.index.Clear(ctx); err != nil {
		return &domain.IndexError{Stage: "clear", Err: err}
	}
	if err := x.documents.Clear(ctx); err != nil {
		return &domain.IndexError{Stage: "clear", Err: err}
	}

	x.status.Reset()
	x.invalidateCache(ctx)

	x.logger.Info("index cleared")
	return nil
}

// Bootstrap seeds the status tracker from persisted storage, so a restart
// over a non-empty store comes up READY.
func (x *Indexer) Bootstrap(ctx context.Context) error {
	docCount, err := x.documents.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	chunkCount, err := x.index.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	x.status.Seed(docCount, chunkCount)
	return nil
}

// prepare chunks and embeds every document in the batch.
func (x *Indexer) prepare(
	ctx context.Context,
	embedder driven.EmbeddingProvider,
	docs []domain.RawDocument,
	startTime time.Time,
) ([]preparedDoc, int, error) {
	prepared := make([]preparedDoc, 0, len(docs))
	totalChunks := 0

	for _, raw := range docs {
		if err := ctx.Err(); err != nil {
			return nil, 0, &domain.IndexError{Stage: "read", Document: raw.Filename, Err: err}
		}

		pd, err := x.prepareDocument(ctx, embedder, raw, startTime)
		if err != nil {
			return nil, 0, err
		}

		prepared = append(prepared, pd)
		totalChunks += len(pd.chunks)
	}

	return prepared, totalChunks, nil
}

// prepareDocument chunks one document and embeds its chunks.
func (x *Indexer) prepareDocument(
	ctx context.Context,
	embedder driven.EmbeddingProvider,
	raw domain.RawDocument,
	createdAt time.Time,
) (preparedDoc, error) {
	pieces := x.pipeline.Process(string(raw.Content))
	if len(pieces) == 0 {
		return preparedDoc{}, &domain.IndexError{Stage: "chunk", Document: raw.Filename, Err: errors.New("no chunks produced")}
	}

	pages := raw.Pages
	if pages <= 0 {
		pages = domain.DerivePages(len(raw.Content))
	}

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Filename:   raw.Filename,
		Size:       len(raw.Content),
		Pages:      pages,
		ChunkCount: len(pieces),
		CreatedAt:  createdAt,
	}

	chunks := make([]*domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &domain.Chunk{
			ID:         fmt.Sprintf("%s-chunk-%d", doc.ID, i),
			DocumentID: doc.ID,
			Filename:   raw.Filename,
			Content:    piece.Content,
			Position:   piece.Position,
			Page:       domain.PageForOffset(piece.StartOffset),
			StartChar:  piece.StartOffset,
			EndChar:    piece.EndOffset,
			CreatedAt:  createdAt,
		}
	}

	if err := x.embedChunks(ctx, embedder, chunks); err != nil {
		return preparedDoc{}, &domain.IndexError{Stage: "embed", Document: raw.Filename, Err: err}
	}

	return preparedDoc{doc: doc, chunks: chunks}, nil
}

// embedChunks fills in embeddings for a document's chunks, batching calls
// to stay under provider payload limits.
func (x *Indexer) embedChunks(ctx context.Context, embedder driven.EmbeddingProvider, chunks []*domain.Chunk) error {
	for from := 0; from < len(chunks); from += x.embedBatchSize {
		to := from + x.embedBatchSize
		if to > len(chunks) {
			to = len(chunks)
		}

		texts := make([]string, to-from)
		for i, chunk := range chunks[from:to] {
			texts[i] = chunk.Content
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vectors), len(texts))
		}

		for i, vector := range vectors {
			chunks[from+i].Embedding = vector
		}
	}
	return nil
}

// commit upserts every prepared document's chunks and saves the document
// records. On failure it rolls back the chunks written so far; a rollback
// failure moves the index to FAILED.
func (x *Indexer) commit(ctx context.Context, prepared []preparedDoc) error {
	var upserted []string

	for _, pd := range prepared {
		if err := x.index.Upsert(ctx, pd.chunks); err != nil {
			indexErr := &domain.IndexError{Stage: "upsert", Document: pd.doc.Filename, Err: err}
			// The failed call may have applied partially; include its ids
			// in the rollback. Delete ignores unknown ids.
			for _, chunk := range pd.chunks {
				upserted = append(upserted, chunk.ID)
			}
			return x.rollback(ctx, upserted, indexErr)
		}
		for _, chunk := range pd.chunks {
			upserted = append(upserted, chunk.ID)
		}
	}

	docs := make([]*domain.Document, len(prepared))
	for i, pd := range prepared {
		docs[i] = pd.doc
	}
	if err := x.documents.SaveBatch(ctx, docs); err != nil {
		return x.rollback(ctx, upserted, &domain.IndexError{Stage: "save", Err: err})
	}

	return nil
}

// rollback deletes the batch's chunks after a commit failure. Runs
// detached from the batch context so cancellation cannot strand
// half-written chunks.
func (x *Indexer) rollback(ctx context.Context, chunkIDs []string, cause *domain.IndexError) error {
	if len(chunkIDs) == 0 {
		x.status.AbortIngest()
		return cause
	}

	if err := x.index.Delete(context.WithoutCancel(ctx), chunkIDs); err != nil {
		cause.RollbackFailed = true
		x.status.FailIngest(cause)
		x.logger.Error("rollback failed, index needs clear",
			"chunks", len(chunkIDs),
			"rollback_error", err,
			"cause", cause.Err,
		)
		return cause
	}

	x.status.AbortIngest()
	x.logger.Warn("ingest rolled back", "chunks", len(chunkIDs), "cause", cause.Err)
	return cause
}

// invalidateCache drops cached comparison results after an index mutation.
func (x *Indexer) invalidateCache(ctx context.Context) {
	if x.cache == nil {
		return
	}
	if err := x.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		x.logger.Warn("failed to invalidate result cache", "error", err)
	}
}

// validateBatch rejects empty batches and empty documents before any
// state changes.
func validateBatch(docs []domain.RawDocument) error {
	if len(docs) == 0 {
		return &domain.IndexError{Stage: "read", Err: domain.ErrNoDocuments}
	}
	for _, doc := range docs {
		if len(doc.Content) == 0 {
			return &domain.IndexError{Stage: "read", Document: doc.Filename, Err: domain.ErrEmptyDocument}
		}
	}
	return nil
}
