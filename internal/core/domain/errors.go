package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors - used across all layers
var (
	// ErrEmptyQuery indicates the query text was empty or whitespace
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrNoArchitectures indicates the request named no architectures
	ErrNoArchitectures = errors.New("at least one architecture required")

	// ErrUnknownArchitecture indicates an architecture id is not registered
	ErrUnknownArchitecture = errors.New("unknown architecture")

	// ErrInvalidK indicates a non-positive top-k value
	ErrInvalidK = errors.New("k must be positive")

	// ErrIngestInProgress indicates an ingestion batch is already in flight
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrIndexFailed indicates the index is in FAILED state and must be
	// cleared before further ingestion
	ErrIndexFailed = errors.New("index in failed state, clear required")

	// ErrNoDocuments indicates an ingestion request carried no documents
	ErrNoDocuments = errors.New("no documents provided")

	// ErrEmptyDocument indicates a document had no content
	ErrEmptyDocument = errors.New("document content is empty")

	// ErrInvalidProvider indicates an unknown provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrQueueFull indicates the ingest queue cannot accept more jobs
	ErrQueueFull = errors.New("ingest queue full")

	// ErrQueueClosed indicates the ingest queue has been shut down
	ErrQueueClosed = errors.New("ingest queue closed")

	// ErrServiceUnavailable indicates an external service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")
)

// ValidationError rejects a malformed QueryRequest before any pipeline is
// dispatched. It has no side effects.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// NewValidationError wraps a sentinel with the offending field name.
func NewValidationError(field string, reason error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IndexError reports an ingestion failure. The batch is aborted and rolled
// back; RollbackFailed marks the cases where the prior state could not be
// restored and the index moved to FAILED.
type IndexError struct {
	Stage          string // "lock", "read", "chunk", "embed", "upsert", "save", "clear"
	Document       string // filename, empty when not tied to one document
	Err            error
	RollbackFailed bool
}

func (e *IndexError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("ingest %s failed for %q: %v", e.Stage, e.Document, e.Err)
	}
	return fmt.Sprintf("ingest %s failed: %v", e.Stage, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ProviderError reports a failed embedding/LLM/rerank/vector-search call
// during query execution. Scoped to the single architecture task that
// triggered it.
type ProviderError struct {
	Provider string // "embedding", "llm", "rerank", "vector-index"
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TimeoutError reports that an architecture task exceeded its time ceiling.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("architecture task exceeded %s ceiling", e.Limit)
}

// ArchitectureError wraps any failure inside one architecture's task so it
// never propagates across task boundaries.
type ArchitectureError struct {
	ID  ArchitectureID
	Err error
}

func (e *ArchitectureError) Error() string {
	return fmt.Sprintf("architecture %q: %v", e.ID, e.Err)
}

func (e *ArchitectureError) Unwrap() error { return e.Err }
