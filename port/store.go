package port

import (
	"context"
	"time"
)

// CacheStore is a TTL key-value store for serialized search results.
type CacheStore interface {
	// Get reports found=false on a miss; err is reserved for store failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// CounterStore atomically increments fixed-window counters.
type CounterStore interface {
	// IncrWithExpiry increments key and makes sure it expires after window.
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}
