package cache

import (
	"fmt"

	appregister "github.com/pos/backend/internal/application/register"
	"github.com/pos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CheckoutStoreFactory creates checkout idempotency stores based on configuration
type CheckoutStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CheckoutStoreFactoryOption is a functional option for configuring the factory
type CheckoutStoreFactoryOption func(*CheckoutStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CheckoutStoreFactoryOption {
	return func(f *CheckoutStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) CheckoutStoreFactoryOption {
	return func(f *CheckoutStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCheckoutStoreFactory creates a new factory
func NewCheckoutStoreFactory(cfg config.RedisConfig, opts ...CheckoutStoreFactoryOption) *CheckoutStoreFactory {
	f := &CheckoutStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based checkout store
func (f *CheckoutStoreFactory) CreateRedisStore() (appregister.IdempotencyStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisCheckoutStore(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis checkout store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory checkout store
// This is suitable for single-instance deployments and testing
// WARNING: In-memory stores do not share state across process instances,
// which can lead to duplicate sales when retried requests land on
// different instances
func (f *CheckoutStoreFactory) CreateInMemoryStore() appregister.IdempotencyStore {
	return NewInMemoryCheckoutStore()
}

// CreateStore creates a checkout store based on whether Redis is available
// It tries to create a Redis store first, and falls back to in-memory if Redis
// is not available and fallback is allowed
func (f *CheckoutStoreFactory) CreateStore() (appregister.IdempotencyStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis checkout store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for checkout idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory checkout store. "+
		"Retried checkouts may create duplicate sales in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
