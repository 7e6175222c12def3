package logger

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"
)

// Logger is a named channel with a handler stack and a processor stack.
type Logger struct {
	timezone   *time.Location
	fallback   Handler
	name       string
	handlers   []Handler
	processors []Processor
	mu         sync.RWMutex
}

// Name returns the channel name.
func (l *Logger) Name() string {
	return l.name
}

// WithName returns a logger for another channel sharing handlers, processors and timezone.
func (l *Logger) WithName(name string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{
		name:       name,
		timezone:   l.timezone,
		fallback:   l.fallback,
		handlers:   slices.Clone(l.handlers),
		processors: slices.Clone(l.processors),
	}
}

// PushHandler puts h on top of the stack.
func (l *Logger) PushHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = slices.Insert(l.handlers, 0, h)
}

// PopHandler removes and returns the handler on top of the stack.
func (l *Logger) PopHandler() (Handler, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.handlers) == 0 {
		return nil, ErrEmptyHandlerStack
	}
	h := l.handlers[0]
	l.handlers = l.handlers[1:]
	return h, nil
}

// SetHandlers replaces the stack. The first element ends up on top.
func (l *Logger) SetHandlers(handlers ...Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = slices.Clone(handlers)
}

// Handlers returns the configured handlers, top of the stack first.
// The placeholder used while no handler is configured is not included.
func (l *Logger) Handlers() []Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.handlers)
}

// PushProcessor puts p on top of the processor stack; it runs before the ones already pushed.
func (l *Logger) PushProcessor(p Processor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.processors = slices.Insert(l.processors, 0, p)
}

// PopProcessor removes and returns the processor on top of the stack.
func (l *Logger) PopProcessor() (Processor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.processors) == 0 {
		return nil, ErrEmptyProcessorStack
	}
	p := l.processors[0]
	l.processors = l.processors[1:]
	return p, nil
}

// Processors returns the processor stack in execution order.
func (l *Logger) Processors() []Processor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.processors)
}

// SetTimezone sets the zone record timestamps are expressed in.
func (l *Logger) SetTimezone(loc *time.Location) {
	if loc == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timezone = loc
}

// Timezone returns the zone record timestamps are expressed in.
func (l *Logger) Timezone() *time.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.timezone
}

// IsHandling reports whether any handler accepts records of the given level.
func (l *Logger) IsHandling(level slog.Level) bool {
	for _, h := range l.stack() {
		if h.IsHandling(level) {
			return true
		}
	}
	return false
}

// Log creates a record and dispatches it.
// Arguments follow the slog convention of key/value pairs or slog.Attr values.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) error {
	return l.log(ctx, level, msg, args...)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelDebug, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelInfo, msg, args...)
}

func (l *Logger) Notice(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelNotice, msg, args...)
}

func (l *Logger) Warning(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelWarning, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelError, msg, args...)
}

func (l *Logger) Critical(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelCritical, msg, args...)
}

func (l *Logger) Alert(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelAlert, msg, args...)
}

func (l *Logger) Emergency(ctx context.Context, msg string, args ...any) error {
	return l.log(ctx, LevelEmergency, msg, args...)
}

// Close closes every configured handler.
func (l *Logger) Close() error {
	var errs []error
	for _, h := range l.Handlers() {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// log must be called directly by an exported method so the caller's PC is one frame up.
func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) error {
	if !l.IsHandling(level) {
		return nil
	}
	rec := NewRecord(time.Now(), l.name, level, msg, args...)
	var pcs [1]uintptr
	// skip [runtime.Callers, log, exported method]
	runtime.Callers(3, pcs[:])
	rec.PC = pcs[0]
	return l.dispatch(ctx, rec)
}

// dispatch hands rec to the first handler accepting its level and to every handler
// below it until one stops bubbling.
func (l *Logger) dispatch(ctx context.Context, rec Record) error {
	handlers := l.stack()

	start := -1
	for i, h := range handlers {
		if h.IsHandling(rec.Level) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	l.mu.RLock()
	tz := l.timezone
	processors := slices.Clone(l.processors)
	l.mu.RUnlock()

	if tz != nil {
		rec.Time = rec.Time.In(tz)
	}
	if rec.Channel == "" {
		rec.Channel = l.name
	}
	for _, p := range processors {
		rec = p.Process(ctx, rec)
	}

	var errs []error
	for _, h := range handlers[start:] {
		stop, err := h.Handle(ctx, rec.Clone())
		if err != nil {
			errs = append(errs, err)
		}
		if stop {
			break
		}
	}
	return errors.Join(errs...)
}

// stack returns a snapshot of the handler stack; pushes shift the backing
// array in place.
func (l *Logger) stack() []Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.handlers) == 0 {
		return []Handler{l.fallback}
	}
	return slices.Clone(l.handlers)
}
