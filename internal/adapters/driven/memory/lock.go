package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// IngestLock is a process-local ingest lock. The TTL matters even
// in-process: a batch goroutine that leaks without releasing must not
// wedge ingestion forever.
type IngestLock struct {
	mu       sync.Mutex
	held     bool
	deadline time.Time
}

// NewIngestLock creates an unheld lock.
func NewIngestLock() *IngestLock {
	return &IngestLock{}
}

// TryAcquire takes the lock unless it is held and unexpired.
func (l *IngestLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, fmt.Errorf("memory: lock ttl must be positive, got %s", ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held && time.Now().Before(l.deadline) {
		return false, nil
	}
	l.held = true
	l.deadline = time.Now().Add(ttl)
	return true, nil
}

// Release frees the lock. Releasing an expired or unheld lock is a no-op.
func (l *IngestLock) Release(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}

// Ping always succeeds for the in-process lock.
func (l *IngestLock) Ping(ctx context.Context) error {
	return ctx.Err()
}
