package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driving"
	"github.com/custodia-labs/raglab-core/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for local testing. Unlike the stateful fakes in
// ports/driven/mocks, these verify the exact calls the indexer makes
// against its backends.

// MockVectorIndex is a mock implementation of driven.VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]*domain.RankedChunk, error) {
	args := m.Called(ctx, embedding, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RankedChunk), args.Error(1)
}

func (m *MockVectorIndex) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockVectorIndex) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorIndex) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDocumentStore is a mock implementation of driven.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) DeleteBatch(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestLock is a mock implementation of driven.IngestLock
type MockIngestLock struct {
	mock.Mock
}

func (m *MockIngestLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIngestLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockIngestLock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockResultCache is a mock implementation of driven.ResultCache
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string) (*domain.ComparisonResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonResult), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, key string, result *domain.ComparisonResult, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockResultCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEmbeddingProvider is a mock implementation of driven.EmbeddingProvider
type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbeddingProvider) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingProvider) Dimensions() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockEmbeddingProvider) Model() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEmbeddingProvider) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEmbeddingProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Test Helpers

func setupIndexerTest(t *testing.T) (*Indexer, *MockVectorIndex, *MockDocumentStore, *MockIngestLock, *MockResultCache, *MockEmbeddingProvider) {
	index := new(MockVectorIndex)
	store := new(MockDocumentStore)
	lock := new(MockIngestLock)
	cache := new(MockResultCache)
	embedder := new(MockEmbeddingProvider)

	providers := runtime.NewProviders()
	providers.SetEmbedding(embedder)

	svc := NewIndexer(IndexerConfig{
		Index:     index,
		Documents: store,
		Lock:      lock,
		Cache:     cache,
		Providers: providers,
		Status:    NewStatusTracker(),
		Logger:    discardLogger(),
		LockTTL:   time.Minute,
	})

	return svc, index, store, lock, cache, embedder
}

// TestNewIndexer tests the constructor and its defaults
func TestNewIndexer(t *testing.T) {
	svc, _, _, _, _, _ := setupIndexerTest(t)

	require.NotNil(t, svc)
	assert.Implements(t, (*driving.IngestService)(nil), svc)
	assert.Equal(t, time.Minute, svc.lockTTL)
	assert.Equal(t, 32, svc.embedBatchSize)
}

// TestIngest_CommitsBatch tests the full backend call sequence of a
// successful batch
func TestIngest_CommitsBatch(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, cache, embedder := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	// Lock is taken with the configured TTL and released after the batch
	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)

	// One chunk per document at this content size, embedded in one call
	embedder.On("Embed", ctx, []string{"the capital of France is Paris"}).
		Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	// Commit upserts chunks, then saves document records
	index.On("Upsert", ctx, mock.AnythingOfType("[]*domain.Chunk")).Return(nil)
	store.On("SaveBatch", ctx, mock.AnythingOfType("[]*domain.Document")).Return(nil)

	// Cached comparison results are stale once the index changed
	cache.On("Invalidate", mock.Anything).Return(nil)

	state, err := svc.Ingest(ctx, docs)

	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusReady, state.Status)
	assert.Equal(t, 1, state.DocumentCount)
	assert.Equal(t, 1, state.ChunkCount)

	lock.AssertExpectations(t)
	embedder.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

// TestIngest_LockBusy tests that a held lock refuses the batch without
// touching any backend
func TestIngest_LockBusy(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, cache, _ := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	lock.On("TryAcquire", ctx, time.Minute).Return(false, nil)

	state, err := svc.Ingest(ctx, docs)

	require.ErrorIs(t, err, domain.ErrIngestInProgress)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	lock.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

// TestIngest_LockError tests that a lock backend failure surfaces as an
// index error without starting the batch
func TestIngest_LockError(t *testing.T) {
	ctx := context.Background()
	svc, _, _, lock, _, _ := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	lock.On("TryAcquire", ctx, time.Minute).Return(false, errors.New("redis: connection refused"))

	state, err := svc.Ingest(ctx, docs)

	require.Error(t, err)
	var idxErr *domain.IndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "lock", idxErr.Stage)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	lock.AssertExpectations(t)
}

// TestIngest_EmbedFailureWritesNothing tests that an embedding failure
// aborts during prepare, before any index or store write
func TestIngest_EmbedFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, cache, embedder := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)

	embedder.On("Embed", ctx, []string{"the capital of France is Paris"}).
		Return(nil, errors.New("quota exhausted"))

	state, err := svc.Ingest(ctx, docs)

	require.Error(t, err)
	var idxErr *domain.IndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "embed", idxErr.Stage)
	assert.Equal(t, "capitals.txt", idxErr.Document)
	assert.False(t, idxErr.RollbackFailed)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	// No Upsert, SaveBatch, or Invalidate expectations were set, so any
	// backend write would have failed the test.
	lock.AssertExpectations(t)
	embedder.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

// TestIngest_SaveFailureDeletesUpsertedChunks tests that a document store
// failure rolls the already-written chunks back out of the index
func TestIngest_SaveFailureDeletesUpsertedChunks(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, _, embedder := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)

	embedder.On("Embed", ctx, []string{"the capital of France is Paris"}).
		Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	index.On("Upsert", ctx, mock.AnythingOfType("[]*domain.Chunk")).Return(nil)
	store.On("SaveBatch", ctx, mock.AnythingOfType("[]*domain.Document")).Return(errors.New("connection reset"))

	// Rollback runs detached from the batch context
	index.On("Delete", mock.Anything, mock.AnythingOfType("[]string")).Return(nil)

	state, err := svc.Ingest(ctx, docs)

	require.Error(t, err)
	var idxErr *domain.IndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "save", idxErr.Stage)
	assert.False(t, idxErr.RollbackFailed)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	lock.AssertExpectations(t)
	embedder.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
}

// TestIngest_RollbackFailureMarksIndexFailed tests that a failed rollback
// leaves the index FAILED and reports it on the error
func TestIngest_RollbackFailureMarksIndexFailed(t *testing.T) {
	ctx := context.Background()
	svc, index, _, lock, _, embedder := setupIndexerTest(t)

	docs := []domain.RawDocument{
		{Filename: "capitals.txt", Content: []byte("the capital of France is Paris")},
	}

	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)

	embedder.On("Embed", ctx, []string{"the capital of France is Paris"}).
		Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	// Upsert may have applied partially, so its chunks are rolled back too
	index.On("Upsert", ctx, mock.AnythingOfType("[]*domain.Chunk")).Return(errors.New("write timeout"))
	index.On("Delete", mock.Anything, mock.AnythingOfType("[]string")).Return(errors.New("still unreachable"))

	state, err := svc.Ingest(ctx, docs)

	require.Error(t, err)
	var idxErr *domain.IndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "upsert", idxErr.Stage)
	assert.True(t, idxErr.RollbackFailed)
	assert.Equal(t, domain.IndexStatusFailed, state.Status)
	assert.NotEmpty(t, state.Error)

	lock.AssertExpectations(t)
	index.AssertExpectations(t)
}

// TestClear_ResetsIndexAndDocuments tests that clear drops both backends
// and invalidates cached results
func TestClear_ResetsIndexAndDocuments(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, cache, _ := setupIndexerTest(t)

	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)
	index.On("Clear", ctx).Return(nil)
	store.On("Clear", ctx).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	err := svc.Clear(ctx)

	require.NoError(t, err)
	state := svc.Status(ctx)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)
	assert.Equal(t, 0, state.DocumentCount)
	assert.Equal(t, 0, state.ChunkCount)

	lock.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

// TestClear_IndexFailure tests that a vector index failure stops the clear
// before the document store is touched
func TestClear_IndexFailure(t *testing.T) {
	ctx := context.Background()
	svc, index, store, lock, _, _ := setupIndexerTest(t)

	lock.On("TryAcquire", ctx, time.Minute).Return(true, nil)
	lock.On("Release", mock.Anything).Return(nil)
	index.On("Clear", ctx).Return(errors.New("collection locked"))

	err := svc.Clear(ctx)

	require.Error(t, err)
	var idxErr *domain.IndexError
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, "clear", idxErr.Stage)

	lock.AssertExpectations(t)
	index.AssertExpectations(t)
	store.AssertExpectations(t)
}

// TestDocuments_ListsFromStore tests the document listing passthrough
func TestDocuments_ListsFromStore(t *testing.T) {
	ctx := context.Background()
	svc, _, store, _, _, _ := setupIndexerTest(t)

	want := []*domain.Document{
		{ID: "doc-1", Filename: "b.txt"},
		{ID: "doc-2", Filename: "a.txt"},
	}
	store.On("List", ctx).Return(want, nil)

	docs, err := svc.Documents(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, docs)

	store.AssertExpectations(t)
}

// TestBootstrap_DocumentCountFailure tests that a store failure aborts
// bootstrap before the index is counted
func TestBootstrap_DocumentCountFailure(t *testing.T) {
	ctx := context.Background()
	svc, index, store, _, _, _ := setupIndexerTest(t)

	store.On("Count", ctx).Return(0, errors.New("relation does not exist"))

	err := svc.Bootstrap(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count documents")
	state := svc.Status(ctx)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	store.AssertExpectations(t)
	index.AssertExpectations(t)
}

// TestBootstrap_ChunkCountFailure tests that an index failure after a
// successful document count leaves the status unseeded
func TestBootstrap_ChunkCountFailure(t *testing.T) {
	ctx := context.Background()
	svc, index, store, _, _, _ := setupIndexerTest(t)

	store.On("Count", ctx).Return(3, nil)
	index.On("Count", ctx).Return(0, errors.New("qdrant unavailable"))

	err := svc.Bootstrap(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count chunks")
	state := svc.Status(ctx)
	assert.Equal(t, domain.IndexStatusEmpty, state.Status)

	store.AssertExpectations(t)
	index.AssertExpectations(t)
}
