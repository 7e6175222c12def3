package logger

import (
	"context"
	"io"
	"log/slog"
)

// Noop accepts every record and does nothing with it. It never stops bubbling.
type Noop struct{}

func (Noop) IsHandling(slog.Level) bool { return true }

func (Noop) Handle(context.Context, Record) (bool, error) { return false, nil }

func (Noop) HandleBatch(context.Context, []Record) error { return nil }

func (Noop) Close() error { return nil }

// NewNope creates a no-op slog logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
