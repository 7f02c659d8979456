package ports

import (
	"context"
	"time"
)

// ResponseCache stores upstream response bodies keyed by request URL.
// It is optional: the HTTP executor works without one, opening an
// independent connection per invocation.
type ResponseCache interface {
	// Get retrieves a cached value.
	// Returns domain.ErrCacheMiss if the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
