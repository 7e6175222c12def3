package handler

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Test keeps handled records in memory. It is meant for tests.
type Test struct {
	logger.Processing
	records   []logger.Record
	formatted []string
	mu        sync.Mutex
}

// NewTest creates a Test handler.
func NewTest(level slog.Level, bubble bool) *Test {
	return &Test{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
	}
}

func (h *Test) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(_ context.Context, rec logger.Record, formatted []byte) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.records = append(h.records, rec)
		h.formatted = append(h.formatted, string(formatted))
		return nil
	})
}

func (h *Test) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

func (h *Test) Close() error { return nil }

// Records returns a copy of the handled records.
func (h *Test) Records() []logger.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]logger.Record, len(h.records))
	copy(out, h.records)
	return out
}

// Formatted returns the formatter output of every handled record.
func (h *Test) Formatted() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.formatted))
	copy(out, h.formatted)
	return out
}

// HasRecord reports whether a record with the level and message was handled.
func (h *Test) HasRecord(level slog.Level, msg string) bool {
	return h.hasRecord(func(rec logger.Record) bool {
		return rec.Level == level && rec.Message == msg
	})
}

// HasRecordThatContains reports whether a record with the level and a message
// containing substr was handled.
func (h *Test) HasRecordThatContains(level slog.Level, substr string) bool {
	return h.hasRecord(func(rec logger.Record) bool {
		return rec.Level == level && strings.Contains(rec.Message, substr)
	})
}

// Reset forgets every handled record.
func (h *Test) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
	h.formatted = nil
}

func (h *Test) hasRecord(match func(logger.Record) bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range h.records {
		if match(rec) {
			return true
		}
	}
	return false
}
