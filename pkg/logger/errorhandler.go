package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
)

// ErrorHandlerConfig maps process-level failures to log levels.
type ErrorHandlerConfig struct {
	// StdLogLevel is used for output written through the standard library log package.
	StdLogLevel slog.Level
	// ErrorLevel is used by Report.
	ErrorLevel slog.Level
	// PanicLevel is used by Recover.
	PanicLevel slog.Level
	// Repanic makes Recover re-raise the panic after logging it.
	Repanic bool
}

// DefaultErrorHandlerConfig returns warning for std log output, error for reported
// errors and critical for panics.
func DefaultErrorHandlerConfig() ErrorHandlerConfig {
	return ErrorHandlerConfig{
		StdLogLevel: LevelWarning,
		ErrorLevel:  LevelError,
		PanicLevel:  LevelCritical,
	}
}

// ErrorHandler routes process-wide error output into a Logger.
type ErrorHandler struct {
	logger   *Logger
	previous *slog.Logger
	prevOut  io.Writer
	cfg      ErrorHandlerConfig
	prevFlag int
	once     sync.Once
}

// RegisterErrorHandler makes l the process default: slog.Default and the standard
// library log package both write into it. Call Unregister to restore the previous setup.
func RegisterErrorHandler(l *Logger, cfg ErrorHandlerConfig) *ErrorHandler {
	eh := &ErrorHandler{
		logger:   l,
		cfg:      cfg,
		previous: slog.Default(),
		prevOut:  log.Writer(),
		prevFlag: log.Flags(),
	}

	slog.SetDefault(l.Slog())
	// slog.SetDefault routes the log package at info; override with the configured level.
	log.SetFlags(0)
	log.SetOutput(&stdLogWriter{logger: l, level: cfg.StdLogLevel})

	return eh
}

// Logger returns the logger errors are routed to.
func (eh *ErrorHandler) Logger() *Logger {
	return eh.logger
}

// Config returns the level mapping in use.
func (eh *ErrorHandler) Config() ErrorHandlerConfig {
	return eh.cfg
}

// Report logs err at the configured error level.
func (eh *ErrorHandler) Report(ctx context.Context, err error, args ...any) {
	if err == nil {
		return
	}
	args = append(args, slog.Any("error", err))
	_ = eh.logger.Log(ctx, eh.cfg.ErrorLevel, err.Error(), args...)
}

// Recover logs a panic at the configured panic level. It must be deferred directly:
//
//	defer eh.Recover(ctx)
func (eh *ErrorHandler) Recover(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}
	_ = eh.logger.Log(ctx, eh.cfg.PanicLevel, fmt.Sprintf("panic: %v", r),
		slog.Any("panic", r),
		slog.String("stack", string(debug.Stack())),
	)
	if eh.cfg.Repanic {
		panic(r)
	}
}

// Unregister restores the slog default and the log package output captured at registration.
func (eh *ErrorHandler) Unregister() {
	eh.once.Do(func() {
		slog.SetDefault(eh.previous)
		log.SetOutput(eh.prevOut)
		log.SetFlags(eh.prevFlag)
	})
}

type stdLogWriter struct {
	logger *Logger
	level  slog.Level
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if err := w.logger.Log(context.Background(), w.level, msg); err != nil {
		return 0, err
	}
	return len(p), nil
}
