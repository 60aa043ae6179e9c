package mocks

import (
	"context"
	"sync"
	"time"
)

// MockIngestLock is an in-process mock of IngestLock for testing
type MockIngestLock struct {
	mu   sync.Mutex
	held bool
}

// NewMockIngestLock creates a new MockIngestLock
func NewMockIngestLock() *MockIngestLock {
	return &MockIngestLock{}
}

func (m *MockIngestLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *MockIngestLock) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

func (m *MockIngestLock) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// SetHeld forces the lock state, simulating a batch held by another instance.
func (m *MockIngestLock) SetHeld(held bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = held
}

func (m *MockIngestLock) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}
