package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// DocumentStore keeps document metadata in a map. Copies go in and
// copies come out, so callers can never alias store state.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

// SaveBatch stores all documents of one batch. The write is atomic under
// the store mutex; a batch either lands whole or, on context
// cancellation, not at all.
func (s *DocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		copied := *doc
		s.docs[doc.ID] = &copied
	}
	return nil
}

// Get returns the document with the given id or domain.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// List returns all documents, newest first.
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		copied := *doc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteBatch removes documents by id. Unknown ids are ignored.
func (s *DocumentStore) DeleteBatch(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Clear removes every document.
func (s *DocumentStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*domain.Document)
	return nil
}
