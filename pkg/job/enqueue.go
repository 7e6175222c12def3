package job

import (
	"time"

	"github.com/riverqueue/river"
)

// enqueueConfig holds options for enqueueing a job.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	tags        []string
	maxAttempts int
	priority    int
}

// EnqueueOption configures job enqueueing.
type EnqueueOption func(*enqueueConfig)

// InQueue specifies which queue to use for the job.
// If not specified, River's default queue is used.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		if d > 0 {
			t := time.Now().Add(d)
			c.scheduledAt = &t
		}
	}
}

// MaxAttempts sets the maximum number of attempts for the job.
// Defaults to River's default (25 attempts).
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Priority sets the job priority, 1 (highest) to 4.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		if p > 0 {
			c.priority = p
		}
	}
}

// Tags adds metadata tags to the job.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}

func buildInsertOpts(opts ...EnqueueOption) *river.InsertOpts {
	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
		Priority:    cfg.priority,
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if len(cfg.tags) > 0 {
		insertOpts.Tags = cfg.tags
	}
	return insertOpts
}
