package handler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// FingersCrossedOption configures a FingersCrossed handler.
type FingersCrossedOption func(*FingersCrossed)

// WithBufferSize bounds the buffer; the oldest records are dropped first.
// Zero is unbounded.
func WithBufferSize(n int) FingersCrossedOption {
	return func(h *FingersCrossed) {
		h.bufferSize = max(n, 0)
	}
}

// WithStopBuffering controls whether the handler keeps passing records
// through after activation (true) or goes back to buffering (false).
func WithStopBuffering(v bool) FingersCrossedOption {
	return func(h *FingersCrossed) {
		h.stopBuffering = v
	}
}

// WithPassthruLevel makes Close forward buffered records at or above level
// even when the handler never activated.
func WithPassthruLevel(level slog.Level) FingersCrossedOption {
	return func(h *FingersCrossed) {
		h.passthru = &level
	}
}

// FingersCrossed buffers every record until the activation strategy fires,
// then forwards the buffer and the following records to the wrapped handler.
type FingersCrossed struct {
	wrapper
	strategy      ActivationStrategy
	passthru      *slog.Level
	buffer        []logger.Record
	bufferSize    int
	mu            sync.Mutex
	buffering     bool
	stopBuffering bool
}

// NewFingersCrossed creates a FingersCrossed handler. A nil strategy
// activates on warnings.
func NewFingersCrossed(inner logger.Handler, strategy ActivationStrategy, bubble bool, opts ...FingersCrossedOption) *FingersCrossed {
	if strategy == nil {
		strategy = NewErrorLevelActivation(logger.LevelWarning)
	}
	h := &FingersCrossed{
		wrapper:       newWrapper(inner, logger.LevelDebug, bubble),
		strategy:      strategy,
		buffering:     true,
		stopBuffering: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *FingersCrossed) ActivationStrategy() ActivationStrategy { return h.strategy }
func (h *FingersCrossed) BufferSize() int { return h.bufferSize }
func (h *FingersCrossed) StopBuffering() bool { return h.stopBuffering }

// PassthruLevel returns the passthru level and whether one is set.
func (h *FingersCrossed) PassthruLevel() (slog.Level, bool) {
	if h.passthru == nil {
		return 0, false
	}
	return *h.passthru, true
}

// IsHandling is always true: every record may be needed once activated.
func (h *FingersCrossed) IsHandling(slog.Level) bool {
	return true
}

func (h *FingersCrossed) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	rec = h.Process(ctx, rec)

	h.mu.Lock()
	if !h.buffering {
		h.mu.Unlock()
		if _, err := h.inner.Handle(ctx, rec); err != nil {
			return false, err
		}
		return !h.Bubble(), nil
	}

	h.buffer = append(h.buffer, rec)
	if h.bufferSize > 0 && len(h.buffer) > h.bufferSize {
		h.buffer = h.buffer[1:]
	}
	var release []logger.Record
	if h.strategy.IsHandlerActivated(rec) {
		if h.stopBuffering {
			h.buffering = false
		}
		release = h.buffer
		h.buffer = nil
	}
	h.mu.Unlock()

	if len(release) > 0 {
		if err := h.inner.HandleBatch(ctx, release); err != nil {
			return false, err
		}
	}
	return !h.Bubble(), nil
}

func (h *FingersCrossed) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Activate forwards the buffer immediately as if the strategy had fired.
func (h *FingersCrossed) Activate(ctx context.Context) error {
	h.mu.Lock()
	if h.stopBuffering {
		h.buffering = false
	}
	release := h.buffer
	h.buffer = nil
	h.mu.Unlock()

	if len(release) == 0 {
		return nil
	}
	return h.inner.HandleBatch(ctx, release)
}

// Clear drops the buffer.
func (h *FingersCrossed) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffer = nil
}

// Reset drops the buffer and returns to buffering mode.
func (h *FingersCrossed) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffer = nil
	h.buffering = true
}

// Close forwards passthru records when configured, then closes the wrapped handler.
func (h *FingersCrossed) Close() error {
	return closeAfterFlush(h.flushPassthru(context.Background()), h.inner)
}

func (h *FingersCrossed) flushPassthru(ctx context.Context) error {
	if h.passthru == nil {
		return nil
	}
	h.mu.Lock()
	var release []logger.Record
	for _, rec := range h.buffer {
		if rec.Level >= *h.passthru {
			release = append(release, rec)
		}
	}
	h.buffer = nil
	h.mu.Unlock()

	if len(release) == 0 {
		return nil
	}
	return h.inner.HandleBatch(ctx, release)
}
