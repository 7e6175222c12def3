package handler

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Group forwards records to several handlers.
type Group struct {
	logger.Processing
	handlers []logger.Handler
}

// NewGroup creates a Group. Records are processed once and a copy is handed
// to each member that handles the level.
func NewGroup(handlers []logger.Handler, bubble bool) (*Group, error) {
	if len(handlers) == 0 {
		return nil, ErrNoHandlers
	}
	return &Group{
		Processing: logger.NewProcessing(logger.LevelDebug, bubble, nil),
		handlers:   slices.Clone(handlers),
	}, nil
}

// Handlers returns the members in order.
func (h *Group) Handlers() []logger.Handler {
	return slices.Clone(h.handlers)
}

func (h *Group) IsHandling(level slog.Level) bool {
	for _, m := range h.handlers {
		if m.IsHandling(level) {
			return true
		}
	}
	return false
}

func (h *Group) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	rec = h.Process(ctx, rec)
	var errs []error
	for _, m := range h.handlers {
		if !m.IsHandling(rec.Level) {
			continue
		}
		if _, err := m.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return !h.Bubble(), errors.Join(errs...)
}

func (h *Group) HandleBatch(ctx context.Context, recs []logger.Record) error {
	recs = h.processAll(ctx, recs)
	var errs []error
	for _, m := range h.handlers {
		if err := m.HandleBatch(ctx, cloneRecords(recs)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetFormatter sets f on every member that accepts a formatter.
func (h *Group) SetFormatter(f logger.Formatter) {
	for _, m := range h.handlers {
		if fh, ok := m.(logger.FormattableHandler); ok && AcceptsFormatter(m) {
			fh.SetFormatter(f)
		}
	}
}

// Formatter returns the formatter of the first formattable member, or nil.
func (h *Group) Formatter() logger.Formatter {
	for _, m := range h.handlers {
		if fh, ok := m.(logger.FormattableHandler); ok && AcceptsFormatter(m) {
			return fh.Formatter()
		}
	}
	return nil
}

// AcceptsFormatter reports whether at least one member accepts a formatter.
func (h *Group) AcceptsFormatter() bool {
	return slices.ContainsFunc(h.handlers, AcceptsFormatter)
}

// Flush flushes the members that buffer.
func (h *Group) Flush(ctx context.Context) error {
	var errs []error
	for _, m := range h.handlers {
		if f, ok := m.(logger.Flusher); ok {
			errs = append(errs, f.Flush(ctx))
		}
	}
	return errors.Join(errs...)
}

// Close closes every member.
func (h *Group) Close() error {
	var errs []error
	for _, m := range h.handlers {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}

func (h *Group) processAll(ctx context.Context, recs []logger.Record) []logger.Record {
	if len(h.Processors()) == 0 {
		return recs
	}
	out := make([]logger.Record, len(recs))
	for i, rec := range recs {
		out[i] = h.Process(ctx, rec)
	}
	return out
}

func cloneRecords(recs []logger.Record) []logger.Record {
	out := make([]logger.Record, len(recs))
	for i, rec := range recs {
		out[i] = rec.Clone()
	}
	return out
}

// WhatFailureGroup is a Group that ignores member failures.
type WhatFailureGroup struct {
	*Group
}

// NewWhatFailureGroup creates a WhatFailureGroup.
func NewWhatFailureGroup(handlers []logger.Handler, bubble bool) (*WhatFailureGroup, error) {
	g, err := NewGroup(handlers, bubble)
	if err != nil {
		return nil, err
	}
	return &WhatFailureGroup{Group: g}, nil
}

func (h *WhatFailureGroup) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	stop, _ := h.Group.Handle(ctx, rec)
	return stop, nil
}

func (h *WhatFailureGroup) HandleBatch(ctx context.Context, recs []logger.Record) error {
	_ = h.Group.HandleBatch(ctx, recs)
	return nil
}

// FallbackGroup hands each record to its members in order until one
// succeeds. The error is returned only when every member failed.
type FallbackGroup struct {
	*Group
}

// NewFallbackGroup creates a FallbackGroup.
func NewFallbackGroup(handlers []logger.Handler, bubble bool) (*FallbackGroup, error) {
	g, err := NewGroup(handlers, bubble)
	if err != nil {
		return nil, err
	}
	return &FallbackGroup{Group: g}, nil
}

func (h *FallbackGroup) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	rec = h.Process(ctx, rec)
	var errs []error
	for _, m := range h.handlers {
		if !m.IsHandling(rec.Level) {
			continue
		}
		if _, err := m.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
			continue
		}
		return !h.Bubble(), nil
	}
	return !h.Bubble(), errors.Join(errs...)
}

func (h *FallbackGroup) HandleBatch(ctx context.Context, recs []logger.Record) error {
	recs = h.processAll(ctx, recs)
	var errs []error
	for _, m := range h.handlers {
		err := m.HandleBatch(ctx, cloneRecords(recs))
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
