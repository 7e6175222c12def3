package handler

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Overflow holds back records of a level until their count exceeds the
// level's threshold. The record that crosses the threshold releases the
// held records, and later records of that level pass straight through.
// Levels without a threshold always pass through.
type Overflow struct {
	wrapper
	thresholds map[slog.Level]int
	buffer     map[slog.Level][]logger.Record
	mu         sync.Mutex
}

// NewOverflow creates an Overflow handler.
func NewOverflow(inner logger.Handler, thresholds map[slog.Level]int, level slog.Level, bubble bool) *Overflow {
	return &Overflow{
		wrapper:    newWrapper(inner, level, bubble),
		thresholds: maps.Clone(thresholds),
		buffer:     make(map[slog.Level][]logger.Record),
	}
}

// Thresholds returns the remaining threshold per level; -1 marks a level
// that has overflowed.
func (h *Overflow) Thresholds() map[slog.Level]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.thresholds)
}

func (h *Overflow) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}
	rec = h.Process(ctx, rec)

	h.mu.Lock()
	var release []logger.Record
	if remaining, ok := h.thresholds[rec.Level]; ok {
		if remaining > 0 {
			h.thresholds[rec.Level] = remaining - 1
			h.buffer[rec.Level] = append(h.buffer[rec.Level], rec)
			h.mu.Unlock()
			return !h.Bubble(), nil
		}
		if remaining == 0 {
			release = h.buffer[rec.Level]
			delete(h.buffer, rec.Level)
			h.thresholds[rec.Level] = -1
		}
	}
	h.mu.Unlock()

	if len(release) > 0 {
		if err := h.inner.HandleBatch(ctx, release); err != nil {
			return false, err
		}
	}
	if _, err := h.inner.Handle(ctx, rec); err != nil {
		return false, err
	}
	return !h.Bubble(), nil
}

func (h *Overflow) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}
