package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// MockRerankProvider is a mock implementation of RerankProvider for testing.
// By default it keeps the candidate order and assigns descending scores;
// SetReverse flips the order so tests can observe the rerank taking effect.
type MockRerankProvider struct {
	mu             sync.Mutex
	failNext       bool
	reverse        bool
	delay          time.Duration
	calls          int
	lastCandidates int
}

// NewMockRerankProvider creates a new MockRerankProvider
func NewMockRerankProvider() *MockRerankProvider {
	return &MockRerankProvider{}
}

func (m *MockRerankProvider) Score(ctx context.Context, query string, candidates []*domain.RankedChunk, params driven.RerankParams) ([]*domain.RankedChunk, error) {
	m.mu.Lock()
	m.calls++
	m.lastCandidates = len(candidates)
	fail := m.failNext
	m.failNext = false
	reverse := m.reverse
	delay := m.delay
	m.mu.Unlock()

	if fail {
		return nil, ErrSimulated
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.RankedChunk, len(candidates))
	for i := range candidates {
		src := i
		if reverse {
			src = len(candidates) - 1 - i
		}
		out[i] = &domain.RankedChunk{
			Chunk:         candidates[src].Chunk,
			Score:         1.0 - float64(i)*0.01,
			OriginalScore: candidates[src].Score,
			SemanticScore: 1.0 - float64(i)*0.01,
			Reranked:      true,
		}
	}

	if params.TopK > 0 && len(out) > params.TopK {
		out = out[:params.TopK]
	}
	return out, nil
}

func (m *MockRerankProvider) Name() string {
	return "mock-reranker"
}

// Helper methods for testing

func (m *MockRerankProvider) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockRerankProvider) SetReverse(reverse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reverse = reverse
}

func (m *MockRerankProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *MockRerankProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCandidates returns the size of the most recent candidate pool.
func (m *MockRerankProvider) LastCandidates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCandidates
}
