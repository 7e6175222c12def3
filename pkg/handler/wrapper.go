package handler

import (
	"log/slog"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// wrapper is embedded by handlers that decorate another handler. It keeps
// the decorator's own level, bubbling and processors; formatter calls are
// forwarded to the wrapped handler.
type wrapper struct {
	logger.Processing
	inner logger.Handler
}

func newWrapper(inner logger.Handler, level slog.Level, bubble bool) wrapper {
	return wrapper{
		Processing: logger.NewProcessing(level, bubble, nil),
		inner:      inner,
	}
}

// Handler returns the wrapped handler.
func (w *wrapper) Handler() logger.Handler {
	return w.inner
}

// SetFormatter sets the formatter of the wrapped handler when it has one.
func (w *wrapper) SetFormatter(f logger.Formatter) {
	if fh, ok := w.inner.(logger.FormattableHandler); ok {
		fh.SetFormatter(f)
	}
}

// Formatter returns the formatter of the wrapped handler, or nil.
func (w *wrapper) Formatter() logger.Formatter {
	if fh, ok := w.inner.(logger.FormattableHandler); ok {
		return fh.Formatter()
	}
	return nil
}

// AcceptsFormatter reports whether SetFormatter has an effect.
func (w *wrapper) AcceptsFormatter() bool {
	return AcceptsFormatter(w.inner)
}

// Close closes the wrapped handler.
func (w *wrapper) Close() error {
	return w.inner.Close()
}

// AcceptsFormatter reports whether a formatter can be set on h.
// Wrappers accept one only when the handler they decorate does.
func AcceptsFormatter(h logger.Handler) bool {
	if a, ok := h.(interface{ AcceptsFormatter() bool }); ok {
		return a.AcceptsFormatter()
	}
	_, ok := h.(logger.FormattableHandler)
	return ok
}
