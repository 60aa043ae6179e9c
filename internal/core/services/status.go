package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// StatusTracker owns the process-wide index state. It is the only writer;
// everything else reads snapshots. Transitions within one batch are
// monotonic: EMPTY/READY → INGESTING → READY or FAILED. A FAILED index
// only leaves that state through Reset (an explicit clear).
type StatusTracker struct {
	mu    sync.RWMutex
	state domain.IndexState

	// Status to restore when a batch aborts with a clean rollback.
	prev domain.IndexStatus
}

// NewStatusTracker creates a tracker in the EMPTY state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		state: domain.IndexState{
			Status:    domain.IndexStatusEmpty,
			UpdatedAt: time.Now(),
		},
	}
}

// State returns a snapshot of the current index state. Never blocks on
// an in-flight ingestion.
func (t *StatusTracker) State() domain.IndexState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// BeginIngest moves the index into INGESTING. It fails when a batch is
// already in flight or the index is FAILED and needs a clear first.
func (t *StatusTracker) BeginIngest() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state.Status {
	case domain.IndexStatusIngesting:
		return domain.ErrIngestInProgress
	case domain.IndexStatusFailed:
		return domain.ErrIndexFailed
	}

	t.prev = t.state.Status
	t.state.Status = domain.IndexStatusIngesting
	t.state.Error = ""
	t.state.UpdatedAt = time.Now()
	return nil
}

// CompleteIngest commits a batch: the index becomes READY and the counts
// grow by the batch's documents and chunks.
func (t *StatusTracker) CompleteIngest(documents, chunks int, took time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.state.Status = domain.IndexStatusReady
	t.state.DocumentCount += documents
	t.state.ChunkCount += chunks
	t.state.Error = ""
	t.state.LastIngestAt = &now
	t.state.LastIngestSec = took.Seconds()
	t.state.UpdatedAt = now
}

// AbortIngest reverts to the pre-batch status after a failed batch whose
// partial writes were rolled back cleanly. Counts are untouched because
// the rollback restored the prior contents.
func (t *StatusTracker) AbortIngest() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Status != domain.IndexStatusIngesting {
		return
	}
	t.state.Status = t.prev
	t.state.UpdatedAt = time.Now()
}

// FailIngest marks the index FAILED. Used when rollback could not restore
// a clean prior state; only Reset recovers from here.
func (t *StatusTracker) FailIngest(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Status = domain.IndexStatusFailed
	if err != nil {
		t.state.Error = err.Error()
	}
	t.state.UpdatedAt = time.Now()
}

// Reset returns the index to EMPTY with zero counts. This is the clear
// path and the only way out of FAILED.
func (t *StatusTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = domain.IndexState{
		Status:    domain.IndexStatusEmpty,
		UpdatedAt: time.Now(),
	}
	t.prev = domain.IndexStatusEmpty
}

// Seed initializes counts from persisted storage at startup. A non-empty
// store brings the index up READY so queries can run immediately.
func (t *StatusTracker) Seed(documents, chunks int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Status != domain.IndexStatusEmpty {
		return
	}
	if documents == 0 && chunks == 0 {
		return
	}
	t.state.Status = domain.IndexStatusReady
	t.state.DocumentCount = documents
	t.state.ChunkCount = chunks
	t.state.UpdatedAt = time.Now()
}
