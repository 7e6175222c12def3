package cache

import "time"

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		cleanupInterval: time.Minute,
	}
}

// WithCleanupInterval sets how often expired keys are removed by the
// background janitor. Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries bounds the number of remembered keys; the least recently
// remembered key is dropped first. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}
