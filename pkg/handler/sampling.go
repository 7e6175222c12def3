package handler

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Sampling forwards roughly one record out of every factor records.
type Sampling struct {
	wrapper
	intN   func(n int) int
	factor int
}

// NewSampling creates a Sampling handler.
func NewSampling(inner logger.Handler, factor int, bubble bool) (*Sampling, error) {
	if factor <= 0 {
		return nil, ErrInvalidFactor
	}
	return &Sampling{
		wrapper: newWrapper(inner, logger.LevelDebug, bubble),
		factor:  factor,
		intN:    rand.IntN,
	}, nil
}

func (h *Sampling) Factor() int { return h.factor }

func (h *Sampling) IsHandling(level slog.Level) bool {
	return h.inner.IsHandling(level)
}

func (h *Sampling) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}
	if h.intN(h.factor) == 0 {
		if _, err := h.inner.Handle(ctx, h.Process(ctx, rec)); err != nil {
			return false, err
		}
	}
	return !h.Bubble(), nil
}

func (h *Sampling) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}
