package mocks

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// MockEmbeddingProvider is a mock implementation of EmbeddingProvider for testing
type MockEmbeddingProvider struct {
	mu         sync.Mutex
	dimensions int
	model      string
	failNext   bool
	delay      time.Duration
	calls      int
	queries    []string
}

// NewMockEmbeddingProvider creates a new MockEmbeddingProvider
func NewMockEmbeddingProvider() *MockEmbeddingProvider {
	return &MockEmbeddingProvider{
		dimensions: 384,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbeddingProvider) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := m.before(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.generateEmbedding(query), nil
}

func (m *MockEmbeddingProvider) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingProvider) Model() string {
	return m.model
}

func (m *MockEmbeddingProvider) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingProvider) Close() error {
	return nil
}

// before counts the call, applies the configured failure or delay, and
// respects context cancellation during the delay.
func (m *MockEmbeddingProvider) before(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	fail := m.failNext
	m.failNext = false
	delay := m.delay
	m.mu.Unlock()

	if fail {
		return ErrSimulated
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

// generateEmbedding generates a deterministic embedding based on text hash
func (m *MockEmbeddingProvider) generateEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		// Generate deterministic pseudo-random values
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbeddingProvider) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockEmbeddingProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *MockEmbeddingProvider) SetDimensions(dim int) {
	m.dimensions = dim
}

func (m *MockEmbeddingProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Queries returns every text passed to EmbedQuery so far.
func (m *MockEmbeddingProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}
