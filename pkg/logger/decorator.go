package logger

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Slog returns a *slog.Logger that feeds the logger's handler stack.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(&slogBridge{logger: l})
}

// slogBridge implements slog.Handler on top of a Logger.
// Attributes bound with WithAttrs belong to the innermost open group, so a
// group holds its bound attributes and the record's own in one value.
type slogBridge struct {
	logger *Logger
	root   []slog.Attr
	groups []boundGroup
}

type boundGroup struct {
	name  string
	attrs []slog.Attr
}

func (h *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.IsHandling(level)
}

// Handle converts the slog record and dispatches it through the logger.
func (h *slogBridge) Handle(ctx context.Context, sr slog.Record) error {
	rec := FromSlog(h.logger.name, sr)
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	rec.Attrs = h.merge(rec.Attrs)
	return h.logger.dispatch(ctx, rec)
}

// merge folds attrs into the open groups, innermost first. Empty groups
// are dropped.
func (h *slogBridge) merge(attrs []slog.Attr) []slog.Attr {
	for i := len(h.groups) - 1; i >= 0; i-- {
		g := h.groups[i]
		members := append(slices.Clone(g.attrs), attrs...)
		if len(members) == 0 {
			attrs = nil
			continue
		}
		attrs = []slog.Attr{{Key: g.name, Value: slog.GroupValue(members...)}}
	}
	if len(h.root) == 0 {
		return attrs
	}
	return append(slices.Clone(h.root), attrs...)
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := &slogBridge{logger: h.logger, root: h.root, groups: slices.Clone(h.groups)}
	if len(next.groups) == 0 {
		next.root = append(slices.Clone(h.root), attrs...)
		return next
	}
	last := &next.groups[len(next.groups)-1]
	last.attrs = append(slices.Clone(last.attrs), attrs...)
	return next
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogBridge{
		logger: h.logger,
		root:   h.root,
		groups: append(slices.Clone(h.groups), boundGroup{name: name}),
	}
}
