// Package redis implements the ingest lock and result cache ports on
// Redis, for deployments where several engine instances share one
// index.
package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.IngestLock = (*IngestLock)(nil)

const ingestLockKey = "raglab:lock:ingest"

// IngestLock implements driven.IngestLock using Redis SETNX with TTL.
// A unique owner ID prevents one instance from releasing a lock that
// has expired and been re-acquired by another.
type IngestLock struct {
	client  *redis.Client
	ownerID string
}

// NewIngestLock creates a Redis-backed ingest lock. The owner ID is
// generated automatically to uniquely identify this instance.
func NewIngestLock(client *redis.Client) *IngestLock {
	return &IngestLock{
		client:  client,
		ownerID: generateOwnerID(),
	}
}

// generateOwnerID builds a hostname:pid:random identifier so lock
// ownership is attributable across instances.
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	randomBytes := make([]byte, 8)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), hex.EncodeToString(randomBytes))
}

// TryAcquire attempts to take the ingest lock with the given TTL.
// Uses Redis SETNX for atomic acquisition; the TTL guards against a
// crashed holder wedging ingestion forever.
// Returns true if acquired, false if already held.
func (l *IngestLock) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("redis: lock ttl must be positive, got %s", ttl)
	}
	acquired, err := l.client.SetNX(ctx, ingestLockKey, l.ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire ingest lock: %w", err)
	}
	return acquired, nil
}

// releaseScript deletes the lock key only when it still carries our
// owner ID. A plain DEL could release a lock that expired and was
// re-acquired by another instance in the meantime.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release releases the ingest lock if held by this instance.
// Safe to call when the lock has expired or is held by someone else.
func (l *IngestLock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, l.client, []string{ingestLockKey}, l.ownerID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release ingest lock: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (l *IngestLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// OwnerID exposes this instance's lock identifier for log lines.
func (l *IngestLock) OwnerID() string {
	return l.ownerID
}
