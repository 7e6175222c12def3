package handler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Buffer keeps processed records in memory and hands them to the wrapped
// handler as one batch on Flush or Close.
type Buffer struct {
	wrapper
	buffer          []logger.Record
	limit           int
	mu              sync.Mutex
	flushOnOverflow bool
}

// NewBuffer creates a Buffer handler. A limit of zero is unbounded. When the
// limit is reached the oldest record is dropped, or the buffer is flushed
// when flushOnOverflow is set.
func NewBuffer(inner logger.Handler, limit int, level slog.Level, bubble, flushOnOverflow bool) *Buffer {
	return &Buffer{
		wrapper:         newWrapper(inner, level, bubble),
		limit:           max(limit, 0),
		flushOnOverflow: flushOnOverflow,
	}
}

func (h *Buffer) BufferLimit() int { return h.limit }
func (h *Buffer) FlushOnOverflow() bool { return h.flushOnOverflow }

// Len returns the number of buffered records.
func (h *Buffer) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buffer)
}

func (h *Buffer) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}

	var overflow []logger.Record
	h.mu.Lock()
	if h.limit > 0 && len(h.buffer) >= h.limit {
		if h.flushOnOverflow {
			overflow = h.buffer
			h.buffer = nil
		} else {
			h.buffer = h.buffer[1:]
		}
	}
	h.buffer = append(h.buffer, h.Process(ctx, rec))
	h.mu.Unlock()

	if len(overflow) > 0 {
		if err := h.inner.HandleBatch(ctx, overflow); err != nil {
			return false, err
		}
	}
	return !h.Bubble(), nil
}

func (h *Buffer) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Flush sends the buffered records to the wrapped handler.
func (h *Buffer) Flush(ctx context.Context) error {
	recs := h.drain()
	if len(recs) == 0 {
		return nil
	}
	return h.inner.HandleBatch(ctx, recs)
}

// Clear drops the buffered records.
func (h *Buffer) Clear() {
	h.drain()
}

// Close flushes and closes the wrapped handler.
func (h *Buffer) Close() error {
	return closeAfterFlush(h.Flush(context.Background()), h.inner)
}

func (h *Buffer) drain() []logger.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	recs := h.buffer
	h.buffer = nil
	return recs
}

var _ logger.Flusher = (*Buffer)(nil)
