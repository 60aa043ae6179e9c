package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// MockVectorIndex is an in-memory mock of VectorIndex using brute-force
// cosine similarity. Deterministic given deterministic embeddings.
type MockVectorIndex struct {
	mu         sync.RWMutex
	chunks     map[string]*domain.Chunk
	failUpsert bool
	failSearch bool
	failDelete bool
	failClear  bool
	searches   int
	lastK      int
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		chunks: make(map[string]*domain.Chunk),
	}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert {
		m.failUpsert = false
		return ErrSimulated
	}
	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk
	}
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]*domain.RankedChunk, error) {
	m.mu.Lock()
	m.searches++
	m.lastK = k
	fail := m.failSearch
	m.failSearch = false
	m.mu.Unlock()
	if fail {
		return nil, ErrSimulated
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*domain.RankedChunk, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		results = append(results, &domain.RankedChunk{
			Chunk: chunk,
			Score: cosine(embedding, chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MockVectorIndex) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		m.failDelete = false
		return ErrSimulated
	}
	for _, id := range ids {
		delete(m.chunks, id)
	}
	return nil
}

func (m *MockVectorIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClear {
		m.failClear = false
		return ErrSimulated
	}
	m.chunks = make(map[string]*domain.Chunk)
	return nil
}

func (m *MockVectorIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

// Helper methods for testing

func (m *MockVectorIndex) SetFailUpsert(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpsert = fail
}

func (m *MockVectorIndex) SetFailSearch(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSearch = fail
}

func (m *MockVectorIndex) SetFailDelete(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDelete = fail
}

func (m *MockVectorIndex) SetFailClear(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failClear = fail
}

// Searches returns how many Search calls were made.
func (m *MockVectorIndex) Searches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searches
}

// LastK returns the k of the most recent Search call.
func (m *MockVectorIndex) LastK() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastK
}

// IDs returns the ids currently in the index.
func (m *MockVectorIndex) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.chunks))
	for id := range m.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
