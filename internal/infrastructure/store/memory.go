package store

import (
	"context"
	"sync"
	"time"

	"github.com/yumi/backend/internal/domain"
)

// storeItem is a single stored value with optional expiration
type storeItem struct {
	Value      any
	Expiration time.Time // zero means the entry never expires
}

// MemoryStore is a thread-safe in-memory key-value store with TTL support.
// Profiles, scan histories and carts live here; entries without a TTL stay
// until deleted.
type MemoryStore struct {
	data  map[string]storeItem
	mutex sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]storeItem),
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go s.cleanupExpired()

	return s
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(ctx context.Context, key string) (any, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[key]
	if !exists {
		return nil, domain.ErrStoreMiss
	}

	if item.expired(time.Now()) {
		return nil, domain.ErrStoreMiss
	}

	return item.Value, nil
}

// Set stores a value. Values are stored as-is, typed; callers get back the
// exact value they put in. A zero ttl means no expiration.
func (s *MemoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item := storeItem{Value: value}
	if ttl > 0 {
		item.Expiration = time.Now().Add(ttl)
	}
	s.data[key] = item

	return nil
}

// Delete removes a value from the store
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Exists checks if a key exists in the store and is not expired
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[key]
	if !exists {
		return false, nil
	}

	return !item.expired(time.Now()), nil
}

func (i storeItem) expired(now time.Time) bool {
	return !i.Expiration.IsZero() && now.After(i.Expiration)
}

// cleanupExpired removes expired entries from the store periodically
func (s *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		now := time.Now()
		for key, item := range s.data {
			if item.expired(now) {
				delete(s.data, key)
			}
		}
		s.mutex.Unlock()
	}
}

// Size returns the current number of items in the store (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Clear removes all items from the store
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]storeItem)
}
