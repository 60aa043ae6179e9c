package driven

import (
	"context"
	"time"
)

// IngestLock serialises ingestion batches. Only one batch may hold the
// lock at a time; queries never take it. Distributed implementations let
// multiple instances share one index safely.
type IngestLock interface {
	// TryAcquire attempts to take the ingest lock with the given TTL.
	// Returns false without blocking when another batch holds it. The
	// lock auto-expires after TTL as a crash guard.
	TryAcquire(ctx context.Context, ttl time.Duration) (acquired bool, err error)

	// Release releases the lock. Safe to call when the lock has already
	// expired; releasing a lock now held by someone else is a no-op.
	Release(ctx context.Context) error

	// Ping checks that the lock backend is healthy.
	Ping(ctx context.Context) error
}
