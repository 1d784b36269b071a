package cache

import (
	"context"
	"sync"
	"time"

	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter implements CacheProvider with an in-process TTL map. It is
// the default cache when Redis isn't configured; expired entries are
// dropped lazily on read and by a background janitor.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	stop  chan struct{}
}

// NewMemoryAdapter creates a memory cache and starts its janitor.
func NewMemoryAdapter() *MemoryAdapter {
	a := &MemoryAdapter{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
	}
	go a.janitor()
	return a
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	item, ok := a.items[key]
	a.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return nil, apperrors.NewNotFoundError("cache key not found: " + key)
	}
	return item.value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	a.items[key] = memoryItem{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(expirationSeconds) * time.Second),
	}
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.items, key)
	a.mu.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	item, ok := a.items[key]
	a.mu.RUnlock()
	if !ok || time.Now().After(item.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the janitor goroutine.
func (a *MemoryAdapter) Close() {
	close(a.stop)
}

func (a *MemoryAdapter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case now := <-ticker.C:
			a.mu.Lock()
			for key, item := range a.items {
				if now.After(item.expiresAt) {
					delete(a.items, key)
				}
			}
			a.mu.Unlock()
		}
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)
