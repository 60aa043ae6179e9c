package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// MockDocumentStore is an in-memory mock of DocumentStore for testing
type MockDocumentStore struct {
	mu       sync.RWMutex
	docs     map[string]*domain.Document
	failNext bool
}

// NewMockDocumentStore returns an empty MockDocumentStore.
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return ErrSimulated
	}
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockDocumentStore) DeleteBatch(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.docs, id)
	}
	return nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (m *MockDocumentStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]*domain.Document)
	return nil
}

// SetFailNext makes the next SaveBatch call return ErrSimulated.
func (m *MockDocumentStore) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}
