package common

import "time"

// CacheInterface is the contract shared by the in-memory and Redis caches.
type CacheInterface interface {
	// Set stores a value under key for the given duration.
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true when the key is present and fresh.
	Get(key string) (interface{}, bool)

	// Delete removes a key.
	Delete(key string)

	// GetOrSet returns the cached value, or loads, stores, and returns it.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close releases any underlying connections.
	Close() error
}
