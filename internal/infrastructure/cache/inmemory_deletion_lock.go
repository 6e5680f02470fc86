package cache

import (
	"context"
	"sync"
	"time"

	"github.com/proptax/backend/internal/domain/shared"
)

// InMemoryDeletionLock implements shared.DeletionLock inside one process.
// Expired entries are replaced lazily on the next Acquire.
type InMemoryDeletionLock struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewInMemoryDeletionLock creates an empty lock table
func NewInMemoryDeletionLock() *InMemoryDeletionLock {
	return &InMemoryDeletionLock{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Acquire takes the lock for key unless a live holder exists.
func (l *InMemoryDeletionLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, held := l.expires[key]; held && now.Before(exp) {
		return false, nil
	}
	l.expires[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lock for key
func (l *InMemoryDeletionLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.expires, key)
	l.mu.Unlock()
	return nil
}

// Close clears every held lock
func (l *InMemoryDeletionLock) Close() error {
	l.mu.Lock()
	l.expires = make(map[string]time.Time)
	l.mu.Unlock()
	return nil
}

var _ shared.DeletionLock = (*InMemoryDeletionLock)(nil)
