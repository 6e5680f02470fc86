package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "proptax:lock:"

// releaseScript deletes the key only while it still holds our token,
// so an expired lock re-taken by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisDeletionLock implements shared.DeletionLock with SET NX PX,
// shared by every instance pointing at the same Redis.
type RedisDeletionLock struct {
	client    *redis.Client
	keyPrefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisDeletionLock connects to Redis and verifies the connection.
func NewRedisDeletionLock(cfg RedisConfig) (*RedisDeletionLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisDeletionLockWithClient(client, ""), nil
}

// NewRedisDeletionLockWithClient wraps an existing client.
func NewRedisDeletionLockWithClient(client *redis.Client, keyPrefix string) *RedisDeletionLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisDeletionLock{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// Acquire takes the lock for key. It returns false while another holder's TTL runs.
func (l *RedisDeletionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

// Release drops a lock this instance holds. Releasing an unknown key is a no-op.
func (l *RedisDeletionLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %q: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable; used by the readiness probe.
func (l *RedisDeletionLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (l *RedisDeletionLock) Close() error {
	return l.client.Close()
}

var _ shared.DeletionLock = (*RedisDeletionLock)(nil)
