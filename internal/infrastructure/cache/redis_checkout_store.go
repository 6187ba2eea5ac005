package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appregister "github.com/pos/backend/internal/application/register"
	"github.com/redis/go-redis/v9"
)

// RedisCheckoutStore implements IdempotencyStore using Redis
// This is suitable for distributed deployments where multiple instances
// need to share checkout replay state
type RedisCheckoutStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCheckoutStore creates a new Redis-based checkout store
func NewRedisCheckoutStore(cfg RedisConfig) (*RedisCheckoutStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCheckoutStore{
		client:    client,
		keyPrefix: "checkout:idempotency:",
	}, nil
}

// NewRedisCheckoutStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisCheckoutStoreWithClient(client *redis.Client, keyPrefix string) *RedisCheckoutStore {
	if keyPrefix == "" {
		keyPrefix = "checkout:idempotency:"
	}
	return &RedisCheckoutStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the stored checkout result for a key, if present
func (s *RedisCheckoutStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read checkout result: %w", err)
	}
	return value, true, nil
}

// Set stores a checkout result under the key with a TTL
func (s *RedisCheckoutStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout result: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisCheckoutStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisCheckoutStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisCheckoutStore implements IdempotencyStore
var _ appregister.IdempotencyStore = (*RedisCheckoutStore)(nil)
