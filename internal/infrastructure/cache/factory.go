package cache

import (
	"fmt"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DeletionLockFactory picks the deletion lock backend from configuration
type DeletionLockFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// DeletionLockFactoryOption is a functional option for configuring the factory
type DeletionLockFactoryOption func(*DeletionLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) DeletionLockFactoryOption {
	return func(f *DeletionLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to a process-local lock.
// Default is true.
func WithInMemoryFallback(allow bool) DeletionLockFactoryOption {
	return func(f *DeletionLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDeletionLockFactory creates a new factory
func NewDeletionLockFactory(cfg config.RedisConfig, opts ...DeletionLockFactoryOption) *DeletionLockFactory {
	f := &DeletionLockFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis lock when Redis is enabled and reachable, otherwise an in-memory lock.
func (f *DeletionLockFactory) Create() (shared.DeletionLock, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory deletion lock")
		return NewInMemoryDeletionLock(), nil
	}

	lock, err := NewRedisDeletionLock(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis deletion lock", zap.String("addr", f.redisConfig.Addr()))
		return lock, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for deletion locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory deletion lock. "+
		"Concurrent deletes from other instances are not serialized.",
		zap.Error(err),
	)
	return NewInMemoryDeletionLock(), nil
}
