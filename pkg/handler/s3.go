package handler

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
	"github.com/dmitrymomot/slogfactory/pkg/storage"
)

// Uploader is implemented by *storage.S3Storage.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// S3 defaults.
const (
	DefaultS3Prefix      = "logs/"
	DefaultS3BufferLimit = 1000
)

// S3 collects formatted records and uploads them as newline delimited JSON
// objects, one object per flush.
type S3 struct {
	logger.Processing
	client  Uploader
	now     func() time.Time
	buf     bytes.Buffer
	channel string
	prefix  string
	limit   int
	count   int
	mu      sync.Mutex
}

// NewS3 creates an S3 handler. The buffer is uploaded when it holds limit
// records and on Flush or Close.
func NewS3(client Uploader, prefix string, limit int, level slog.Level, bubble bool) *S3 {
	if limit <= 0 {
		limit = DefaultS3BufferLimit
	}
	return &S3{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter {
			return formatter.NewJSON(formatter.WithBatchMode(formatter.BatchModeNewlines))
		}),
		client: client,
		prefix: prefix,
		limit:  limit,
		now:    time.Now,
	}
}

func (h *S3) Prefix() string { return h.prefix }
func (h *S3) BufferLimit() int { return h.limit }

func (h *S3) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, rec logger.Record, formatted []byte) error {
		h.mu.Lock()
		if h.channel == "" {
			h.channel = rec.Channel
		}
		h.buf.Write(formatted)
		if len(formatted) > 0 && formatted[len(formatted)-1] != '\n' {
			h.buf.WriteByte('\n')
		}
		h.count++
		full := h.count >= h.limit
		h.mu.Unlock()

		if full {
			return h.Flush(ctx)
		}
		return nil
	})
}

func (h *S3) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Flush uploads the buffered records.
func (h *S3) Flush(ctx context.Context) error {
	h.mu.Lock()
	if h.count == 0 {
		h.mu.Unlock()
		return nil
	}
	body := bytes.Clone(h.buf.Bytes())
	key := storage.ObjectKey(h.prefix, h.channel, h.now(), ".ndjson")
	h.buf.Reset()
	h.count = 0
	h.mu.Unlock()

	return h.client.Put(ctx, key, body, "application/x-ndjson")
}

// Close uploads what is left.
func (h *S3) Close() error {
	return h.Flush(context.Background())
}

var _ logger.Flusher = (*S3)(nil)
