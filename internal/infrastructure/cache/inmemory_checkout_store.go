package cache

import (
	"context"
	"sync"
	"time"

	appregister "github.com/pos/backend/internal/application/register"
)

// entry represents a stored checkout result with expiration
type entry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryCheckoutStore implements IdempotencyStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryCheckoutStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCheckoutStore creates a new in-memory checkout store
// It starts a background goroutine to clean up expired entries
func NewInMemoryCheckoutStore() *InMemoryCheckoutStore {
	store := &InMemoryCheckoutStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get returns the stored checkout result for a key, if present and not expired
func (s *InMemoryCheckoutStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, false, nil // Expired, treat as absent
	}

	return e.value, true, nil
}

// Set stores a checkout result under the key with a TTL
func (s *InMemoryCheckoutStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryCheckoutStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryCheckoutStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries from the store
func (s *InMemoryCheckoutStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryCheckoutStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemoryCheckoutStore implements IdempotencyStore
var _ appregister.IdempotencyStore = (*InMemoryCheckoutStore)(nil)
