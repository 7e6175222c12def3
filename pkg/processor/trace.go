package processor

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Trace adds the OpenTelemetry span context found in ctx as extra
// "trace_id", "span_id" and "trace_sampled".
type Trace struct{}

func NewTrace() Trace {
	return Trace{}
}

func (Trace) Process(ctx context.Context, rec logger.Record) logger.Record {
	if ctx == nil {
		return rec
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return rec
	}
	rec.AddExtra(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
		slog.Bool("trace_sampled", sc.IsSampled()),
	)
	return rec
}
