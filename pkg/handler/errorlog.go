package handler

import (
	"context"
	"log"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// ErrorLogFormat is the default template of the ErrorLog handler; the
// standard logger adds its own timestamp.
const ErrorLogFormat = "[%channel%] %level_name%: %message% %context% %extra%"

// ErrorLog writes records through a standard library *log.Logger.
type ErrorLog struct {
	logger.Processing
	out            *log.Logger
	expandNewlines bool
}

// NewErrorLog creates an ErrorLog handler. A nil out writes to log.Default().
// With expandNewlines every line of a multi-line message is logged separately.
func NewErrorLog(out *log.Logger, level slog.Level, bubble, expandNewlines bool) *ErrorLog {
	if out == nil {
		out = log.Default()
	}
	return &ErrorLog{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter {
			return formatter.NewLine(formatter.WithFormat(ErrorLogFormat))
		}),
		out:            out,
		expandNewlines: expandNewlines,
	}
}

func (h *ErrorLog) ExpandNewlines() bool { return h.expandNewlines }

func (h *ErrorLog) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(_ context.Context, _ logger.Record, formatted []byte) error {
		msg := strings.TrimRight(string(formatted), "\n")
		if !h.expandNewlines {
			return h.out.Output(2, msg)
		}
		for _, line := range strings.Split(msg, "\n") {
			if err := h.out.Output(2, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *ErrorLog) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

func (h *ErrorLog) Close() error { return nil }
