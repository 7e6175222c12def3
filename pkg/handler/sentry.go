package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultSentryFlushTimeout bounds event delivery on Close.
const DefaultSentryFlushTimeout = 2 * time.Second

// Sentry reports records to Sentry: records at or above the event level
// become issues, the others are sent as logs.
type Sentry struct {
	*Slog
	hub        *sentry.Hub
	eventLevel slog.Level
}

// NewSentry creates a Sentry handler on hub. A nil hub uses sentry.CurrentHub().
func NewSentry(hub *sentry.Hub, level, eventLevel slog.Level, bubble bool) *Sentry {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	target := sentryslog.Option{
		Hub:        hub,
		EventLevel: levelsFrom(eventLevel),
		LogLevel:   levelsFrom(level),
		AddSource:  true,
	}.NewSentryHandler(context.Background())

	return &Sentry{
		Slog:       NewSlog(target, level, bubble),
		hub:        hub,
		eventLevel: eventLevel,
	}
}

func (h *Sentry) Hub() *sentry.Hub { return h.hub }
func (h *Sentry) EventLevel() slog.Level { return h.eventLevel }

// Close waits for buffered events to be delivered.
func (h *Sentry) Close() error {
	if client := h.hub.Client(); client != nil {
		client.Flush(DefaultSentryFlushTimeout)
	}
	return nil
}

// levelsFrom lists the named levels at or above min.
func levelsFrom(min slog.Level) []slog.Level {
	var out []slog.Level
	for _, level := range logger.Levels {
		if level >= min {
			out = append(out, level)
		}
	}
	return out
}
