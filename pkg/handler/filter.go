package handler

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Filter passes only records whose level is in the accepted set.
type Filter struct {
	wrapper
	accepted map[slog.Level]struct{}
}

// NewFilter creates a Filter accepting exactly the given levels.
func NewFilter(inner logger.Handler, accepted []slog.Level, bubble bool) *Filter {
	h := &Filter{
		wrapper:  newWrapper(inner, logger.LevelDebug, bubble),
		accepted: make(map[slog.Level]struct{}, len(accepted)),
	}
	for _, level := range accepted {
		h.accepted[level] = struct{}{}
	}
	return h
}

// NewFilterRange creates a Filter accepting the known levels from minLevel to maxLevel.
func NewFilterRange(inner logger.Handler, minLevel, maxLevel slog.Level, bubble bool) *Filter {
	var accepted []slog.Level
	for _, level := range logger.Levels {
		if level >= minLevel && level <= maxLevel {
			accepted = append(accepted, level)
		}
	}
	return NewFilter(inner, accepted, bubble)
}

// AcceptedLevels returns the accepted levels in ascending order.
func (h *Filter) AcceptedLevels() []slog.Level {
	out := make([]slog.Level, 0, len(h.accepted))
	for level := range h.accepted {
		out = append(out, level)
	}
	slices.Sort(out)
	return out
}

func (h *Filter) IsHandling(level slog.Level) bool {
	_, ok := h.accepted[level]
	return ok
}

func (h *Filter) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}
	if _, err := h.inner.Handle(ctx, h.Process(ctx, rec)); err != nil {
		return false, err
	}
	return !h.Bubble(), nil
}

func (h *Filter) HandleBatch(ctx context.Context, recs []logger.Record) error {
	filtered := make([]logger.Record, 0, len(recs))
	for _, rec := range recs {
		if h.IsHandling(rec.Level) {
			filtered = append(filtered, h.Process(ctx, rec))
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return h.inner.HandleBatch(ctx, filtered)
}
