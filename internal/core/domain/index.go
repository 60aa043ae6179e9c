package domain

import "time"

// IndexStatus represents the lifecycle state of the shared index
type IndexStatus string

const (
	IndexStatusEmpty     IndexStatus = "empty"
	IndexStatusIngesting IndexStatus = "ingesting"
	IndexStatusReady     IndexStatus = "ready"
	IndexStatusFailed    IndexStatus = "failed"
)

// IndexState is a point-in-time snapshot of the index. The status tracker
// owns the single mutable instance; everything else sees copies.
type IndexState struct {
	Status        IndexStatus `json:"status"`
	DocumentCount int         `json:"document_count"`
	ChunkCount    int         `json:"chunk_count"`
	Error         string      `json:"error,omitempty"`
	LastIngestAt  *time.Time  `json:"last_ingest_at,omitempty"`
	LastIngestSec float64     `json:"last_ingest_seconds,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// CanIngest reports whether a new ingestion batch may start from this state.
// FAILED requires an explicit clear first; INGESTING means a batch is already
// in flight.
func (s IndexState) CanIngest() bool {
	return s.Status == IndexStatusEmpty || s.Status == IndexStatusReady
}

// Queryable reports whether queries have a consistent snapshot to read.
// Queries during INGESTING run against the previous snapshot, so only
// FAILED is excluded here.
func (s IndexState) Queryable() bool {
	return s.Status != IndexStatusFailed
}
