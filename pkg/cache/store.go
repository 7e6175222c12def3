package cache

import (
	"context"
	"time"
)

// Store remembers keys for a limited time. It backs record deduplication.
type Store interface {
	// Remember marks key as seen for ttl and reports whether it was already
	// seen and not yet expired. Check and mark happen atomically.
	Remember(ctx context.Context, key string, ttl time.Duration) (seen bool, err error)

	// Close releases resources.
	Close() error
}
