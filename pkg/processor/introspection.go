package processor

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// skippedPackages are frames never reported as the call site.
var skippedPackages = []string{
	"github.com/dmitrymomot/slogfactory/pkg/logger.",
	"github.com/dmitrymomot/slogfactory/pkg/handler.",
	"github.com/dmitrymomot/slogfactory/pkg/processor.",
	"log/slog.",
	"log.",
	"runtime.",
}

// Introspection adds the call site as extra "file", "line" and "function".
type Introspection struct {
	level      slog.Level
	skip       []string
	skipFrames int
}

// NewIntrospection creates the processor for records at or above level.
// skipFunctions lists additional function name prefixes to step over;
// skipFrames drops that many frames after the skipped ones.
func NewIntrospection(level slog.Level, skipFunctions []string, skipFrames int) *Introspection {
	return &Introspection{
		level:      level,
		skip:       append(slices.Clone(skippedPackages), skipFunctions...),
		skipFrames: max(skipFrames, 0),
	}
}

func (p *Introspection) Process(_ context.Context, rec logger.Record) logger.Record {
	if rec.Level < p.level {
		return rec
	}

	frame, ok := p.caller(rec.PC)
	if !ok {
		return rec
	}
	rec.AddExtra(
		slog.String("file", frame.File),
		slog.Int("line", frame.Line),
		slog.String("function", frame.Function),
	)
	return rec
}

func (p *Introspection) caller(pc uintptr) (runtime.Frame, bool) {
	if pc != 0 && p.skipFrames == 0 {
		frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
		if !p.skipped(frame.Function) {
			return frame, frame.Function != ""
		}
	}

	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	toSkip := p.skipFrames
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !p.skipped(frame.Function) {
			if toSkip == 0 {
				return frame, true
			}
			toSkip--
		}
		if !more {
			return runtime.Frame{}, false
		}
	}
}

func (p *Introspection) skipped(function string) bool {
	for _, prefix := range p.skip {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return false
}
