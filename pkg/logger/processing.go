package logger

import (
	"context"
	"log/slog"
	"slices"
)

// Processing is the shared state of record-writing handlers: minimum level,
// bubbling, a processor stack and a formatter. Concrete handlers embed it.
type Processing struct {
	formatter        Formatter
	defaultFormatter func() Formatter
	processors       []Processor
	level            slog.Level
	bubble           bool
}

// NewProcessing returns handler state for the given level and bubbling flag.
// defaultFormatter is used until SetFormatter is called; it may be nil for
// handlers that do not render records themselves.
func NewProcessing(level slog.Level, bubble bool, defaultFormatter func() Formatter) Processing {
	return Processing{
		level:            level,
		bubble:           bubble,
		defaultFormatter: defaultFormatter,
	}
}

// Level returns the minimum level handled.
func (p *Processing) Level() slog.Level {
	return p.level
}

// SetLevel changes the minimum level handled.
func (p *Processing) SetLevel(level slog.Level) {
	p.level = level
}

// Bubble reports whether handled records continue to lower handlers.
func (p *Processing) Bubble() bool {
	return p.bubble
}

// SetBubble changes the bubbling behaviour.
func (p *Processing) SetBubble(bubble bool) {
	p.bubble = bubble
}

// IsHandling reports whether level is at or above the handler level.
func (p *Processing) IsHandling(level slog.Level) bool {
	return level >= p.level
}

// PushProcessor adds a processor on top of the stack.
func (p *Processing) PushProcessor(proc Processor) {
	p.processors = slices.Insert(p.processors, 0, proc)
}

// PopProcessor removes and returns the processor on top of the stack.
func (p *Processing) PopProcessor() (Processor, error) {
	if len(p.processors) == 0 {
		return nil, ErrEmptyProcessorStack
	}
	proc := p.processors[0]
	p.processors = p.processors[1:]
	return proc, nil
}

// Processors returns the stack in execution order.
func (p *Processing) Processors() []Processor {
	return slices.Clone(p.processors)
}

// SetFormatter replaces the formatter.
func (p *Processing) SetFormatter(f Formatter) {
	p.formatter = f
}

// Formatter returns the formatter, building the default one on first use.
func (p *Processing) Formatter() Formatter {
	if p.formatter == nil && p.defaultFormatter != nil {
		p.formatter = p.defaultFormatter()
	}
	return p.formatter
}

// Process runs the processor stack over a copy of rec.
func (p *Processing) Process(ctx context.Context, rec Record) Record {
	if len(p.processors) == 0 {
		return rec
	}
	rec = rec.Clone()
	for _, proc := range p.processors {
		rec = proc.Process(ctx, rec)
	}
	return rec
}

// HandleWith runs the full pipeline for record-writing handlers:
// level check, processors, formatting and finally write.
func (p *Processing) HandleWith(ctx context.Context, rec Record, write func(ctx context.Context, rec Record, formatted []byte) error) (bool, error) {
	if !p.IsHandling(rec.Level) {
		return false, nil
	}

	rec = p.Process(ctx, rec)

	var formatted []byte
	if f := p.Formatter(); f != nil {
		out, err := f.Format(rec)
		if err != nil {
			return false, err
		}
		formatted = out
	}

	if err := write(ctx, rec, formatted); err != nil {
		return false, err
	}
	return !p.bubble, nil
}
