package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/cache"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultDeduplicationTime is how long a record is remembered.
const DefaultDeduplicationTime = 60 * time.Second

// Deduplication buffers records and, on flush, drops the whole batch when
// every record at or above the deduplication level was already seen within
// the time window. Records are remembered by level name and message.
type Deduplication struct {
	*Buffer
	store      cache.Store
	dedupLevel slog.Level
	ttl        time.Duration
}

// NewDeduplication creates a Deduplication handler remembering records in store.
func NewDeduplication(inner logger.Handler, store cache.Store, dedupLevel slog.Level, ttl time.Duration, bubble bool) *Deduplication {
	if ttl <= 0 {
		ttl = DefaultDeduplicationTime
	}
	return &Deduplication{
		Buffer:     NewBuffer(inner, 0, logger.LevelDebug, bubble, false),
		store:      store,
		dedupLevel: dedupLevel,
		ttl:        ttl,
	}
}

func (h *Deduplication) DeduplicationLevel() slog.Level { return h.dedupLevel }
func (h *Deduplication) Time() time.Duration { return h.ttl }
func (h *Deduplication) Store() cache.Store { return h.store }

// Flush forwards the buffered batch unless it only repeats known incidents.
func (h *Deduplication) Flush(ctx context.Context) error {
	recs := h.drain()
	if len(recs) == 0 {
		return nil
	}

	var checked, passthru bool
	for _, rec := range recs {
		if rec.Level < h.dedupLevel {
			continue
		}
		seen, err := h.store.Remember(ctx, rec.LevelName()+":"+rec.Message, h.ttl)
		if err != nil {
			return err
		}
		checked = true
		passthru = passthru || !seen
	}

	if checked && !passthru {
		return nil
	}
	return h.inner.HandleBatch(ctx, recs)
}

// Close flushes, closes the wrapped handler and releases the store.
func (h *Deduplication) Close() error {
	return errors.Join(closeAfterFlush(h.Flush(context.Background()), h.inner), h.store.Close())
}
