package logger

import (
	"context"
	"errors"
	"log/slog"
)

// ErrEmptyProcessorStack is returned when popping from a handler or logger without processors.
var ErrEmptyProcessorStack = errors.New("logger: processor stack is empty")

// ErrEmptyHandlerStack is returned when popping from a logger without handlers.
var ErrEmptyHandlerStack = errors.New("logger: handler stack is empty")

// Handler receives records and delivers them somewhere.
type Handler interface {
	// IsHandling reports whether a record of the given level would be handled.
	IsHandling(level slog.Level) bool

	// Handle processes a record. stop is true when the record must not reach
	// the handlers below this one in the logger's stack.
	Handle(ctx context.Context, rec Record) (stop bool, err error)

	// HandleBatch processes several records at once.
	HandleBatch(ctx context.Context, recs []Record) error

	// Close flushes pending records and releases resources.
	Close() error
}

// FormattableHandler is a handler that renders records through a Formatter.
type FormattableHandler interface {
	Handler
	SetFormatter(f Formatter)
	Formatter() Formatter
}

// ProcessableHandler is a handler with its own processor stack.
type ProcessableHandler interface {
	Handler
	// PushProcessor adds a processor on top of the stack; it runs before the ones already pushed.
	PushProcessor(p Processor)
	PopProcessor() (Processor, error)
	Processors() []Processor
}

// Flusher is implemented by buffering handlers.
type Flusher interface {
	Flush(ctx context.Context) error
}

// HandleEach passes records one by one to h and joins the errors.
func HandleEach(ctx context.Context, h Handler, recs []Record) error {
	var errs []error
	for _, rec := range recs {
		if _, err := h.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Formatter renders records into their final representation.
type Formatter interface {
	Format(rec Record) ([]byte, error)
	FormatBatch(recs []Record) ([]byte, error)
}

// Processor enriches a record before it reaches handlers.
type Processor interface {
	Process(ctx context.Context, rec Record) Record
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, rec Record) Record

// Process calls f(ctx, rec).
func (f ProcessorFunc) Process(ctx context.Context, rec Record) Record {
	return f(ctx, rec)
}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
