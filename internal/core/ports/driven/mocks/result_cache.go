package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// MockResultCache is an in-memory mock of ResultCache for testing.
// TTLs are recorded but not enforced.
type MockResultCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.ComparisonResult
	hits    int
	misses  int
}

// NewMockResultCache creates a new MockResultCache
func NewMockResultCache() *MockResultCache {
	return &MockResultCache{
		entries: make(map[string]*domain.ComparisonResult),
	}
}

func (m *MockResultCache) Get(ctx context.Context, key string) (*domain.ComparisonResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, domain.ErrNotFound
	}
	m.hits++
	return result, nil
}

func (m *MockResultCache) Set(ctx context.Context, key string, result *domain.ComparisonResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = result
	return nil
}

func (m *MockResultCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.ComparisonResult)
	return nil
}

// Helper methods for testing

func (m *MockResultCache) Hits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}

func (m *MockResultCache) Misses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.misses
}

func (m *MockResultCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
