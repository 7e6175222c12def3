package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Enqueuer inserts jobs without processing them.
// Workers consuming the jobs run in separate processes.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures the enqueuer.
type EnqueuerOption func(*enqueuerConfig)

type enqueuerConfig struct {
	logger *slog.Logger
}

// WithEnqueuerLogger sets the logger River reports to.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(c *enqueuerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only River client on top of pool.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &enqueuerConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}

	// No Workers and no Queues: insert-only mode.
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{
		pool:   pool,
		client: client,
		logger: cfg.logger,
	}, nil
}

// Enqueue inserts one job.
func (e *Enqueuer) Enqueue(ctx context.Context, args river.JobArgs, opts ...EnqueueOption) error {
	if _, err := e.client.Insert(ctx, args, buildInsertOpts(opts...)); err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	return nil
}

// EnqueueMany inserts several jobs sharing the same options in one round trip.
func (e *Enqueuer) EnqueueMany(ctx context.Context, args []river.JobArgs, opts ...EnqueueOption) error {
	if len(args) == 0 {
		return nil
	}
	insertOpts := buildInsertOpts(opts...)
	params := make([]river.InsertManyParams, 0, len(args))
	for _, a := range args {
		params = append(params, river.InsertManyParams{Args: a, InsertOpts: insertOpts})
	}
	if _, err := e.client.InsertMany(ctx, params); err != nil {
		return fmt.Errorf("job: enqueue many: %w", err)
	}
	return nil
}

// Healthcheck pings the database backing the queue.
func (e *Enqueuer) Healthcheck(ctx context.Context) error {
	if e == nil || e.pool == nil {
		return ErrHealthcheckFailed
	}
	if err := e.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
