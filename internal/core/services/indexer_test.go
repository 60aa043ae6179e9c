package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

type indexerFixture struct {
	indexer   *Indexer
	index     *mocks.MockVectorIndex
	documents *mocks.MockDocumentStore
	lock      *mocks.MockIngestLock
	cache     *mocks.MockResultCache
	status    *StatusTracker
	tp        *testProviders
}

func newIndexerFixture() *indexerFixture {
	f := &indexerFixture{
		index:     mocks.NewMockVectorIndex(),
		documents: mocks.NewMockDocumentStore(),
		lock:      mocks.NewMockIngestLock(),
		cache:     mocks.NewMockResultCache(),
		status:    NewStatusTracker(),
		tp:        newTestProviders(),
	}
	f.indexer = NewIndexer(IndexerConfig{
		Index:     f.index,
		Documents: f.documents,
		Lock:      f.lock,
		Cache:     f.cache,
		Providers: f.tp.providers,
		Status:    f.status,
		Logger:    discardLogger(),
	})
	return f
}

func rawDocs(names ...string) []domain.RawDocument {
	docs := make([]domain.RawDocument, len(names))
	for i, name := range names {
		content := fmt.Sprintf("The %s document explains topic %d in plain sentences. It exists so ingestion has something realistic to chunk and embed.", name, i)
		docs[i] = domain.RawDocument{Filename: name, Content: []byte(content)}
	}
	return docs
}

func TestIndexer_Ingest(t *testing.T) {
	f := newIndexerFixture()

	state, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt", "b.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Status != domain.IndexStatusReady {
		t.Errorf("expected ready, got %s", state.Status)
	}
	if state.DocumentCount != 2 {
		t.Errorf("expected 2 documents, got %d", state.DocumentCount)
	}

	count, err := f.index.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != state.ChunkCount {
		t.Errorf("status chunk count %d disagrees with index %d", state.ChunkCount, count)
	}
	if count == 0 {
		t.Error("expected chunks in the index")
	}

	docs, err := f.indexer.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 stored documents, got %d", len(docs))
	}

	if f.lock.Held() {
		t.Error("expected ingest lock released")
	}
}

func TestIndexer_Ingest_ChunkIDFormat(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs, err := f.indexer.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	for i, id := range f.index.IDs() {
		want := fmt.Sprintf("%s-chunk-%d", docs[0].ID, i)
		if id != want {
			t.Errorf("chunk %d: expected id %q, got %q", i, want, id)
		}
	}
}

func TestIndexer_Ingest_EmptyBatch(t *testing.T) {
	f := newIndexerFixture()

	_, err := f.indexer.Ingest(context.Background(), nil)
	if !errors.Is(err, domain.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	if got := f.status.State().Status; got != domain.IndexStatusEmpty {
		t.Errorf("expected state untouched, got %s", got)
	}
}

func TestIndexer_Ingest_EmptyDocument(t *testing.T) {
	f := newIndexerFixture()

	docs := []domain.RawDocument{
		{Filename: "good.txt", Content: []byte("some content")},
		{Filename: "empty.txt", Content: nil},
	}

	_, err := f.indexer.Ingest(context.Background(), docs)
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty.txt") {
		t.Errorf("expected offending filename in error, got %q", err.Error())
	}
	if f.tp.embedding.Calls() != 0 {
		t.Errorf("expected no provider calls for an invalid batch, got %d", f.tp.embedding.Calls())
	}
}

func TestIndexer_Ingest_NoEmbedder(t *testing.T) {
	f := newIndexerFixture()
	f.indexer = NewIndexer(IndexerConfig{
		Index:     f.index,
		Documents: f.documents,
		Lock:      f.lock,
		Providers: runtime.NewProviders(),
		Status:    f.status,
		Logger:    discardLogger(),
	})

	_, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
	if got := f.status.State().Status; got != domain.IndexStatusEmpty {
		t.Errorf("expected state untouched, got %s", got)
	}
}

func TestIndexer_Ingest_LockHeld(t *testing.T) {
	f := newIndexerFixture()
	f.lock.SetHeld(true)

	_, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt"))
	if !errors.Is(err, domain.ErrIngestInProgress) {
		t.Errorf("expected ErrIngestInProgress, got %v", err)
	}
	if !f.lock.Held() {
		t.Error("expected foreign lock left in place")
	}
}

func TestIndexer_Ingest_EmbedFailureKeepsPriorState(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("base.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := f.status.State()
	indexedBefore := f.index.IDs()

	f.tp.embedding.SetFailNext(true)
	_, err := f.indexer.Ingest(context.Background(), rawDocs("broken.txt"))

	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if ierr.Stage != "embed" {
		t.Errorf("expected embed stage, got %s", ierr.Stage)
	}

	after := f.status.State()
	if after.Status != domain.IndexStatusReady {
		t.Errorf("expected ready after clean abort, got %s", after.Status)
	}
	if after.DocumentCount != before.DocumentCount || after.ChunkCount != before.ChunkCount {
		t.Errorf("expected counts unchanged, got docs=%d chunks=%d", after.DocumentCount, after.ChunkCount)
	}
	if got := f.index.IDs(); len(got) != len(indexedBefore) {
		t.Errorf("expected index contents unchanged, got %d chunks", len(got))
	}
	if f.lock.Held() {
		t.Error("expected ingest lock released")
	}
}

func TestIndexer_Ingest_UpsertFailureRollsBack(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("base.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := f.status.State()
	indexedBefore := f.index.IDs()

	f.index.SetFailUpsert(true)
	_, err := f.indexer.Ingest(context.Background(), rawDocs("x.txt", "y.txt"))

	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if ierr.Stage != "upsert" {
		t.Errorf("expected upsert stage, got %s", ierr.Stage)
	}
	if ierr.RollbackFailed {
		t.Error("expected clean rollback")
	}

	after := f.status.State()
	if after.Status != domain.IndexStatusReady {
		t.Errorf("expected ready after rollback, got %s", after.Status)
	}
	if after.DocumentCount != before.DocumentCount {
		t.Errorf("expected document count unchanged, got %d", after.DocumentCount)
	}
	if got := f.index.IDs(); len(got) != len(indexedBefore) {
		t.Errorf("expected prior chunks only, got %d", len(got))
	}

	docCount, _ := f.documents.Count(context.Background())
	if docCount != 1 {
		t.Errorf("expected 1 stored document, got %d", docCount)
	}
}

func TestIndexer_Ingest_SaveFailureRollsBack(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("base.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	indexedBefore := f.index.IDs()

	f.documents.SetFailNext(true)
	_, err := f.indexer.Ingest(context.Background(), rawDocs("x.txt", "y.txt"))

	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if ierr.Stage != "save" {
		t.Errorf("expected save stage, got %s", ierr.Stage)
	}

	// The batch's upserted chunks were deleted again.
	after := f.index.IDs()
	if len(after) != len(indexedBefore) {
		t.Errorf("expected %d chunks after rollback, got %d", len(indexedBefore), len(after))
	}
	if got := f.status.State().Status; got != domain.IndexStatusReady {
		t.Errorf("expected ready after rollback, got %s", got)
	}
}

func TestIndexer_Ingest_RollbackFailure(t *testing.T) {
	f := newIndexerFixture()
	f.index.SetFailUpsert(true)
	f.index.SetFailDelete(true)

	_, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt"))

	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if !ierr.RollbackFailed {
		t.Error("expected RollbackFailed to be set")
	}

	state := f.status.State()
	if state.Status != domain.IndexStatusFailed {
		t.Fatalf("expected failed state, got %s", state.Status)
	}
	if state.Error == "" {
		t.Error("expected failure reason in state")
	}

	// A failed index refuses further batches until cleared.
	_, err = f.indexer.Ingest(context.Background(), rawDocs("b.txt"))
	if !errors.Is(err, domain.ErrIndexFailed) {
		t.Errorf("expected ErrIndexFailed, got %v", err)
	}

	if err := f.indexer.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.status.State().Status; got != domain.IndexStatusEmpty {
		t.Errorf("expected empty after clear, got %s", got)
	}

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("c.txt")); err != nil {
		t.Fatalf("expected ingest to work after clear, got %v", err)
	}
}

func TestIndexer_Ingest_Cancelled(t *testing.T) {
	f := newIndexerFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.indexer.Ingest(ctx, rawDocs("a.txt"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := f.status.State().Status; got != domain.IndexStatusEmpty {
		t.Errorf("expected state restored, got %s", got)
	}
	if f.lock.Held() {
		t.Error("expected ingest lock released despite cancellation")
	}
}

func TestIndexer_Ingest_InvalidatesResultCache(t *testing.T) {
	f := newIndexerFixture()
	stale := &domain.ComparisonResult{Query: "old"}
	if err := f.cache.Set(context.Background(), "cmp:old", stale, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.cache.Size() != 0 {
		t.Errorf("expected result cache invalidated, %d entries left", f.cache.Size())
	}
}

func TestIndexer_Clear(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt", "b.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.indexer.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := f.status.State()
	if state.Status != domain.IndexStatusEmpty {
		t.Errorf("expected empty, got %s", state.Status)
	}
	if state.DocumentCount != 0 || state.ChunkCount != 0 {
		t.Errorf("expected zero counts, got docs=%d chunks=%d", state.DocumentCount, state.ChunkCount)
	}

	count, _ := f.index.Count(context.Background())
	if count != 0 {
		t.Errorf("expected empty index, got %d chunks", count)
	}
	docCount, _ := f.documents.Count(context.Background())
	if docCount != 0 {
		t.Errorf("expected empty document store, got %d", docCount)
	}
}

func TestIndexer_Clear_LockHeld(t *testing.T) {
	f := newIndexerFixture()
	f.lock.SetHeld(true)

	err := f.indexer.Clear(context.Background())
	if !errors.Is(err, domain.ErrIngestInProgress) {
		t.Errorf("expected ErrIngestInProgress, got %v", err)
	}
}

func TestIndexer_ChunkIDsNotReusedAfterClear(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := f.index.IDs()

	if err := f.indexer.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same batch again; document ids are random, so chunk ids differ.
	if _, err := f.indexer.Ingest(context.Background(), rawDocs("a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool, len(first))
	for _, id := range first {
		seen[id] = true
	}
	for _, id := range f.index.IDs() {
		if seen[id] {
			t.Errorf("chunk id %q reissued after clear", id)
		}
	}
}

func TestIndexer_Bootstrap(t *testing.T) {
	f := newIndexerFixture()

	// Simulate persisted contents from a previous run.
	seedChunks(t, f.index, "persisted alpha", "persisted beta")
	err := f.documents.SaveBatch(context.Background(), []*domain.Document{
		{ID: "doc-1", Filename: "persisted.txt", ChunkCount: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.indexer.Bootstrap(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := f.status.State()
	if state.Status != domain.IndexStatusReady {
		t.Errorf("expected ready after bootstrap, got %s", state.Status)
	}
	if state.DocumentCount != 1 || state.ChunkCount != 2 {
		t.Errorf("expected counts 1/2, got %d/%d", state.DocumentCount, state.ChunkCount)
	}
}

func TestIndexer_Bootstrap_EmptyStore(t *testing.T) {
	f := newIndexerFixture()

	if err := f.indexer.Bootstrap(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.status.State().Status; got != domain.IndexStatusEmpty {
		t.Errorf("expected empty, got %s", got)
	}
}

func TestIndexer_IngestSource(t *testing.T) {
	f := newIndexerFixture()
	source := &staticSource{docs: rawDocs("from-source.txt")}

	state, err := f.indexer.IngestSource(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.DocumentCount != 1 {
		t.Errorf("expected 1 document, got %d", state.DocumentCount)
	}
}

func TestIndexer_IngestSource_ReadFailure(t *testing.T) {
	f := newIndexerFixture()
	source := &staticSource{err: errors.New("disk gone")}

	_, err := f.indexer.IngestSource(context.Background(), source)

	var ierr *domain.IndexError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if ierr.Stage != "read" {
		t.Errorf("expected read stage, got %s", ierr.Stage)
	}
}

func TestIndexer_IngestAsync(t *testing.T) {
	f := newIndexerFixture()
	queue := &stubQueue{}
	f.indexer = NewIndexer(IndexerConfig{
		Index:     f.index,
		Documents: f.documents,
		Lock:      f.lock,
		Queue:     queue,
		Providers: f.tp.providers,
		Status:    f.status,
		Logger:    discardLogger(),
	})

	job, err := f.indexer.IngestAsync(context.Background(), rawDocs("a.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Errorf("expected pending job, got %s", job.Status)
	}
	if job.ID == "" {
		t.Error("expected job id")
	}
	if queue.Len() != 1 {
		t.Errorf("expected 1 queued job, got %d", queue.Len())
	}
}

func TestIndexer_IngestAsync_ValidatesBatch(t *testing.T) {
	f := newIndexerFixture()
	queue := &stubQueue{}
	f.indexer = NewIndexer(IndexerConfig{
		Index:     f.index,
		Documents: f.documents,
		Lock:      f.lock,
		Queue:     queue,
		Providers: f.tp.providers,
		Status:    f.status,
		Logger:    discardLogger(),
	})

	_, err := f.indexer.IngestAsync(context.Background(), nil)
	if !errors.Is(err, domain.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	if queue.Len() != 0 {
		t.Errorf("expected nothing queued, got %d", queue.Len())
	}
}

func TestIndexer_IngestAsync_NoQueue(t *testing.T) {
	f := newIndexerFixture()

	if _, err := f.indexer.IngestAsync(context.Background(), rawDocs("a.txt")); err == nil {
		t.Error("expected error without a configured queue")
	}
}

// staticSource is a canned DocumentSource.
type staticSource struct {
	docs []domain.RawDocument
	err  error
}

func (s *staticSource) Documents(ctx context.Context) ([]domain.RawDocument, error) {
	return s.docs, s.err
}

// stubQueue records enqueued jobs in order.
type stubQueue struct {
	jobs []*domain.IngestJob
}

func (q *stubQueue) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Dequeue(ctx context.Context) (*domain.IngestJob, error) {
	if len(q.jobs) == 0 {
		return nil, context.Canceled
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *stubQueue) Len() int { return len(q.jobs) }

func (q *stubQueue) Close() error { return nil }
