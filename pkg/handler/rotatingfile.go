package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// RotatingFileConfig describes the rotated file.
type RotatingFileConfig struct {
	Filename string `mapstructure:"filename"`
	// RotateSchedule is a cron expression forcing a rotation, e.g. "@daily".
	RotateSchedule string `mapstructure:"rotate_schedule"`
	// MaxSize is the size in megabytes that triggers a rotation.
	MaxSize int `mapstructure:"max_size"`
	// MaxFiles is the number of rotated files kept; zero keeps all of them.
	MaxFiles int `mapstructure:"max_files"`
	// MaxAge is the number of days rotated files are kept; zero disables age based removal.
	MaxAge    int  `mapstructure:"max_age"`
	Compress  bool `mapstructure:"compress"`
	LocalTime bool `mapstructure:"local_time"`
}

// DefaultRotatingFileConfig returns the defaults applied by the factory.
func DefaultRotatingFileConfig() RotatingFileConfig {
	return RotatingFileConfig{
		MaxSize:   100,
		LocalTime: true,
	}
}

// RotatingFile writes to a file rotated by size and, optionally, on a schedule.
type RotatingFile struct {
	logger.Processing
	file *lumberjack.Logger
	cron *cron.Cron
	cfg  RotatingFileConfig
	mu   sync.Mutex
}

// NewRotatingFile creates a RotatingFile handler. The schedule, when set,
// runs until Close.
func NewRotatingFile(cfg RotatingFileConfig, level slog.Level, bubble bool) (*RotatingFile, error) {
	if cfg.Filename == "" {
		return nil, ErrEmptyStream
	}

	h := &RotatingFile{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		cfg:        cfg,
		file: &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxFiles,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		},
	}

	if cfg.RotateSchedule != "" {
		schedule, err := cron.ParseStandard(cfg.RotateSchedule)
		if err != nil {
			return nil, errors.Join(ErrInvalidSchedule, err)
		}
		h.cron = cron.New()
		h.cron.Schedule(schedule, cron.FuncJob(func() { _ = h.Rotate() }))
		h.cron.Start()
	}
	return h, nil
}

func (h *RotatingFile) Config() RotatingFileConfig { return h.cfg }

// Rotate closes the current file and starts a new one.
func (h *RotatingFile) Rotate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Rotate()
}

func (h *RotatingFile) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(_ context.Context, _ logger.Record, formatted []byte) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		_, err := h.file.Write(formatted)
		return err
	})
}

func (h *RotatingFile) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Close stops the rotation schedule and closes the file.
func (h *RotatingFile) Close() error {
	if h.cron != nil {
		<-h.cron.Stop().Done()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}
