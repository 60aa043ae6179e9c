package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IngestLock = (*AdvisoryLock)(nil)

// ingestLockID is the advisory lock key for ingestion. Derived from an
// FNV-1a hash of a stable name so every instance computes the same id.
var ingestLockID = hashLockName("raglab:lock:ingest")

// hashLockName converts a lock name to a 64-bit integer for PostgreSQL
// advisory locks.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// AdvisoryLock implements driven.IngestLock using PostgreSQL advisory
// locks.
//
// Advisory locks are session-scoped, so the adapter pins a dedicated
// connection while the lock is held and unlocks on that same
// connection. The TTL parameter is accepted for interface compatibility
// but ignored: the crash guard is the session itself, since PostgreSQL
// drops the lock when the holder's connection dies.
//
// For multi-instance deployments Redis locks are recommended; this is a
// fallback when Redis is unavailable.
type AdvisoryLock struct {
	db *DB

	mu   sync.Mutex
	conn *sql.Conn // non-nil while the lock is held
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// TryAcquire attempts to take the ingest lock.
// Uses pg_try_advisory_lock which returns immediately without blocking.
func (l *AdvisoryLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("postgres: lock ttl must be positive, got %s", ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		// This instance already holds the lock.
		return false, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire ingest lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", ingestLockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

// Release releases the ingest lock if held by this instance.
// Safe to call when the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	var released bool
	err := l.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", ingestLockID).Scan(&released)
	l.conn.Close()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("release ingest lock: %w", err)
	}
	// released=false means the session no longer held the lock, which is
	// not an error.
	return nil
}

// Ping checks if the PostgreSQL backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}
