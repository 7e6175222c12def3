package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/job"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Enqueuer is implemented by *job.Enqueuer.
type Enqueuer interface {
	Enqueue(ctx context.Context, args river.JobArgs, opts ...job.EnqueueOption) error
	EnqueueMany(ctx context.Context, args []river.JobArgs, opts ...job.EnqueueOption) error
}

// QueueConfig holds the job options of queued records.
type QueueConfig struct {
	Queue       string `mapstructure:"queue"`
	MaxAttempts int    `mapstructure:"max_attempts"`
	Priority    int    `mapstructure:"priority"`
}

// DefaultQueueConfig returns the defaults applied by the factory.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Queue:       "logs",
		MaxAttempts: 3,
		Priority:    1,
	}
}

// Queue enqueues records as job.RecordArgs for a worker to deliver.
type Queue struct {
	logger.Processing
	client Enqueuer
	norm   *formatter.Normalizer
	cfg    QueueConfig
}

// NewQueue creates a Queue handler.
func NewQueue(client Enqueuer, cfg QueueConfig, level slog.Level, bubble bool) *Queue {
	return &Queue{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewJSON() }),
		client:     client,
		norm:       formatter.NewNormalizer(),
		cfg:        cfg,
	}
}

func (h *Queue) Config() QueueConfig { return h.cfg }

func (h *Queue) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, rec logger.Record, formatted []byte) error {
		args, err := h.args(rec, formatted)
		if err != nil {
			return err
		}
		return h.client.Enqueue(ctx, args, h.options()...)
	})
}

// HandleBatch enqueues the handled records in one insert.
func (h *Queue) HandleBatch(ctx context.Context, recs []logger.Record) error {
	batch := make([]river.JobArgs, 0, len(recs))
	for _, rec := range recs {
		if !h.IsHandling(rec.Level) {
			continue
		}
		rec = h.Process(ctx, rec)
		formatted, err := h.Formatter().Format(rec)
		if err != nil {
			return err
		}
		args, err := h.args(rec, formatted)
		if err != nil {
			return err
		}
		batch = append(batch, args)
	}
	if len(batch) == 0 {
		return nil
	}
	return h.client.EnqueueMany(ctx, batch, h.options()...)
}

// Close is a no-op: the client is owned by the container.
func (h *Queue) Close() error { return nil }

func (h *Queue) args(rec logger.Record, formatted []byte) (job.RecordArgs, error) {
	attrs, err := jsonObject(h.norm.Attrs(rec.Attrs))
	if err != nil {
		return job.RecordArgs{}, err
	}
	extra, err := jsonObject(h.norm.Attrs(rec.Extra))
	if err != nil {
		return job.RecordArgs{}, err
	}
	return job.RecordArgs{
		Time:      rec.Time,
		Channel:   rec.Channel,
		Level:     logger.LevelValue(rec.Level),
		LevelName: rec.LevelName(),
		Message:   rec.Message,
		Formatted: string(formatted),
		Context:   json.RawMessage(attrs),
		Extra:     json.RawMessage(extra),
	}, nil
}

func (h *Queue) options() []job.EnqueueOption {
	return []job.EnqueueOption{
		job.InQueue(h.cfg.Queue),
		job.MaxAttempts(h.cfg.MaxAttempts),
		job.Priority(h.cfg.Priority),
	}
}
