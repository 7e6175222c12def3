package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Slog hands records to a slog.Handler. It is the bridge used by the
// Sentry and Google Cloud handlers.
type Slog struct {
	logger.Processing
	target slog.Handler
	closer io.Closer
}

// NewSlog creates a Slog handler. When target implements io.Closer it is
// closed with the handler.
func NewSlog(target slog.Handler, level slog.Level, bubble bool) *Slog {
	h := &Slog{
		Processing: logger.NewProcessing(level, bubble, nil),
		target:     target,
	}
	if c, ok := target.(io.Closer); ok {
		h.closer = c
	}
	return h
}

// Target returns the wrapped slog handler.
func (h *Slog) Target() slog.Handler { return h.target }

// AcceptsFormatter is false: the target renders records itself.
func (h *Slog) AcceptsFormatter() bool { return false }

func (h *Slog) IsHandling(level slog.Level) bool {
	return h.Processing.IsHandling(level) && h.target.Enabled(context.Background(), level)
}

func (h *Slog) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}
	if err := h.target.Handle(ctx, h.Process(ctx, rec).Slog()); err != nil {
		return false, err
	}
	return !h.Bubble(), nil
}

func (h *Slog) HandleBatch(ctx context.Context, recs []logger.Record) error {
	var errs []error
	for _, rec := range recs {
		if _, err := h.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Slog) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}
