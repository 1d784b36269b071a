package providers

import (
	"context"
)

// CacheProvider defines the interface for the TTL-bounded cache shared by
// collectors and the geolocation resolver. Writes are last-writer-wins:
// values for the same key are derived from the same query, so no cross-task
// coordination is required beyond what the adapter itself provides.
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
