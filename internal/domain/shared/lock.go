package shared

import (
	"context"
	"time"
)

// DeletionLock serializes destructive operations on a single entity across callers
type DeletionLock interface {
	// Acquire takes the lock for key with a TTL.
	// Returns true if the lock was taken, false if someone else holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lock for key
	Release(ctx context.Context, key string) error

	// Close closes the lock and releases resources
	Close() error
}

// DeletionLockKey returns the lock key used for cascading deletes of ref
func DeletionLockKey(ref EntityRef) string {
	return "delete:" + ref.String()
}
