package logger

import (
	"time"
)

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithHandlers pushes handlers in order, so the last one ends up on top of the stack.
func WithHandlers(handlers ...Handler) Option {
	return func(l *Logger) {
		for _, h := range handlers {
			if h != nil {
				l.handlers = append([]Handler{h}, l.handlers...)
			}
		}
	}
}

// WithProcessors pushes processors in order, so the last one runs first.
func WithProcessors(processors ...Processor) Option {
	return func(l *Logger) {
		for _, p := range processors {
			if p != nil {
				l.processors = append([]Processor{p}, l.processors...)
			}
		}
	}
}

// WithTimezone sets the zone record timestamps are expressed in.
func WithTimezone(loc *time.Location) Option {
	return func(l *Logger) {
		if loc != nil {
			l.timezone = loc
		}
	}
}

// WithPlaceholder replaces the handler used while the stack is empty.
func WithPlaceholder(h Handler) Option {
	return func(l *Logger) {
		if h != nil {
			l.fallback = h
		}
	}
}

// New creates a logger for the given channel.
// Until a handler is pushed, records go to a no-op placeholder.
func New(name string, opts ...Option) *Logger {
	l := &Logger{
		name:     name,
		timezone: time.Local,
		fallback: Noop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
