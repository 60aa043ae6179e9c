package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

const (
	documentColumns = "id, filename, size_bytes, pages, chunk_count, created_at"

	upsertDocumentQuery = `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			size_bytes = EXCLUDED.size_bytes,
			pages = EXCLUDED.pages,
			chunk_count = EXCLUDED.chunk_count,
			created_at = EXCLUDED.created_at
	`

	getDocumentQuery = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	listDocumentsQuery = `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, id ASC`
)

// DocumentStore persists document metadata in PostgreSQL. Chunk content
// and vectors live in the vector index; this table is the catalog the
// API lists and the indexer reconciles against.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore returns a DocumentStore backed by db.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// SaveBatch upserts every document of a batch inside one transaction,
// so a failed ingest leaves no partial catalog rows behind.
func (s *DocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertDocumentQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, doc := range docs {
			if _, err := stmt.ExecContext(ctx,
				doc.ID, doc.Filename, doc.Size, doc.Pages, doc.ChunkCount, doc.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(sc scanner) (*domain.Document, error) {
	var doc domain.Document
	err := sc.Scan(&doc.ID, &doc.Filename, &doc.Size, &doc.Pages, &doc.ChunkCount, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Get returns the document with the given ID, or domain.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx, getDocumentQuery, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns every document, newest first.
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, listDocumentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteBatch removes the given documents. IDs without a row are
// silently skipped, which makes ingest rollback idempotent.
func (s *DocumentStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var clause strings.Builder
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			clause.WriteByte(',')
		}
		clause.WriteByte('$')
		clause.WriteString(strconv.Itoa(i + 1))
		args[i] = id
	}

	query := `DELETE FROM documents WHERE id IN (` + clause.String() + `)`
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// Count returns the number of documents in the catalog.
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Clear removes every document.
func (s *DocumentStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	return err
}
