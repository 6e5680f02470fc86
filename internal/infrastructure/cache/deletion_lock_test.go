package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T) (*RedisDeletionLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lock := NewRedisDeletionLockWithClient(client, "")
	t.Cleanup(func() { _ = lock.Close() })
	return lock, mr
}

func TestRedisDeletionLock(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire fails until release", func(t *testing.T) {
		lock, mr := newRedisLock(t)

		ok, err := lock.Acquire(ctx, "delete:property:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists(defaultLockPrefix+"delete:property:1"))

		ok, err = lock.Acquire(ctx, "delete:property:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, lock.Release(ctx, "delete:property:1"))
		assert.False(t, mr.Exists(defaultLockPrefix+"delete:property:1"))

		ok, err = lock.Acquire(ctx, "delete:property:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ttl expiry frees the key", func(t *testing.T) {
		lock, mr := newRedisLock(t)
		ok, _ := lock.Acquire(ctx, "k", time.Second)
		require.True(t, ok)

		mr.FastForward(2 * time.Second)
		other := NewRedisDeletionLockWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
		defer other.Close()
		ok, err := other.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		// the first holder's late release must not free the new holder's lock
		require.NoError(t, lock.Release(ctx, "k"))
		assert.True(t, mr.Exists(defaultLockPrefix+"k"))
	})

	t.Run("release of an unknown key is a no-op", func(t *testing.T) {
		lock, _ := newRedisLock(t)
		assert.NoError(t, lock.Release(ctx, "never-held"))
	})

	t.Run("unreachable redis surfaces an error", func(t *testing.T) {
		lock, mr := newRedisLock(t)
		mr.Close()
		_, err := lock.Acquire(ctx, "k", time.Second)
		assert.Error(t, err)
	})
}

func TestInMemoryDeletionLock(t *testing.T) {
	ctx := context.Background()

	t.Run("expiry", func(t *testing.T) {
		lock := NewInMemoryDeletionLock()
		now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		lock.now = func() time.Time { return now }

		ok, _ := lock.Acquire(ctx, "k", 30*time.Second)
		require.True(t, ok)
		ok, _ = lock.Acquire(ctx, "k", 30*time.Second)
		assert.False(t, ok)

		now = now.Add(31 * time.Second)
		ok, _ = lock.Acquire(ctx, "k", 30*time.Second)
		assert.True(t, ok)
	})

	t.Run("only one concurrent winner", func(t *testing.T) {
		lock := NewInMemoryDeletionLock()
		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := lock.Acquire(ctx, "delete:property:x", time.Minute); ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})
}

func TestDeletionLockFactory(t *testing.T) {
	t.Run("disabled redis gives in-memory", func(t *testing.T) {
		lock, err := NewDeletionLockFactory(config.RedisConfig{}).Create()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryDeletionLock{}, lock)
	})

	t.Run("reachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		lock, err := NewDeletionLockFactory(config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}).Create()
		require.NoError(t, err)
		defer lock.Close()
		assert.IsType(t, &RedisDeletionLock{}, lock)
	})

	t.Run("unreachable redis without fallback", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewDeletionLockFactory(cfg, WithInMemoryFallback(false)).Create()
		assert.Error(t, err)

		lock, err := NewDeletionLockFactory(cfg).Create()
		require.NoError(t, err)
		var _ shared.DeletionLock = lock
		assert.IsType(t, &InMemoryDeletionLock{}, lock)
	})
}
