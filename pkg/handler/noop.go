package handler

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// NewNoop returns a handler that accepts every record, does nothing and
// never stops bubbling.
func NewNoop() logger.Handler {
	return logger.Noop{}
}

// Null swallows every record at or above its level.
type Null struct {
	level slog.Level
}

// NewNull creates a Null handler.
func NewNull(level slog.Level) *Null {
	return &Null{level: level}
}

func (h *Null) Level() slog.Level { return h.level }

func (h *Null) IsHandling(level slog.Level) bool {
	return level >= h.level
}

// Handle stops handled records from bubbling.
func (h *Null) Handle(_ context.Context, rec logger.Record) (bool, error) {
	return h.IsHandling(rec.Level), nil
}

func (h *Null) HandleBatch(context.Context, []logger.Record) error { return nil }

func (h *Null) Close() error { return nil }
