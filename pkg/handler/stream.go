package handler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultFilePermission is used when a stream opens its own file.
const DefaultFilePermission os.FileMode = 0o644

// StreamOption configures a Stream handler.
type StreamOption func(*Stream)

// WithFilePermission sets the mode of files created by the handler.
func WithFilePermission(mode os.FileMode) StreamOption {
	return func(h *Stream) {
		if mode != 0 {
			h.perm = mode
		}
	}
}

// WithLocking serializes writes with a mutex.
func WithLocking(v bool) StreamOption {
	return func(h *Stream) {
		h.useLocking = v
	}
}

// Stream writes formatted records to an io.Writer or a file.
type Stream struct {
	logger.Processing
	w          io.Writer
	file       *os.File
	path       string
	mu         sync.Mutex
	perm       os.FileMode
	useLocking bool
	closed     bool
}

// NewStream creates a handler writing to w.
func NewStream(w io.Writer, level slog.Level, bubble bool, opts ...StreamOption) *Stream {
	h := newStream(level, bubble, opts...)
	h.w = w
	return h
}

// NewStreamFile creates a handler appending to the file at path.
// The file and its directory are created on the first write.
func NewStreamFile(path string, level slog.Level, bubble bool, opts ...StreamOption) (*Stream, error) {
	if path == "" {
		return nil, ErrEmptyStream
	}
	h := newStream(level, bubble, opts...)
	h.path = path
	return h, nil
}

func newStream(level slog.Level, bubble bool, opts ...StreamOption) *Stream {
	h := &Stream{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		perm:       DefaultFilePermission,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Stream) URL() string { return h.path }
func (h *Stream) Stream() io.Writer { return h.w }
func (h *Stream) FilePermission() os.FileMode { return h.perm }
func (h *Stream) UseLocking() bool { return h.useLocking }

func (h *Stream) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(_ context.Context, _ logger.Record, formatted []byte) error {
		return h.write(formatted)
	})
}

func (h *Stream) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Close closes the file opened by the handler. Caller supplied writers are left open.
func (h *Stream) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	h.w = nil
	return err
}

func (h *Stream) write(p []byte) error {
	if h.useLocking || h.path != "" {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	if h.w == nil {
		if err := h.open(); err != nil {
			return err
		}
	}
	_, err := h.w.Write(p)
	return err
}

// open must be called with h.mu held.
func (h *Stream) open() error {
	if h.closed {
		return ErrClosed
	}
	if h.path == "" {
		return ErrEmptyStream
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, h.perm)
	if err != nil {
		return err
	}
	h.file = f
	h.w = f
	return nil
}
