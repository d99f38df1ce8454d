package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-key TTL. Get reports a
// miss as ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
