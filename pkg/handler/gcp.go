package handler

import (
	"io"
	"log/slog"

	"github.com/pjscruggs/slogcp"
)

// GCPConfig configures the Google Cloud Logging handler.
type GCPConfig struct {
	ProjectID string `mapstructure:"project_id"`
	AddSource bool   `mapstructure:"add_source"`
}

// GCP writes Cloud Logging structured JSON through slogcp.
type GCP struct {
	*Slog
	cfg GCPConfig
}

// NewGCP creates a GCP handler writing to w.
func NewGCP(w io.Writer, cfg GCPConfig, level slog.Level, bubble bool) (*GCP, error) {
	var (
		target *slogcp.Handler
		err    error
	)
	if cfg.ProjectID != "" {
		target, err = slogcp.NewHandler(w,
			slogcp.WithLevel(level),
			slogcp.WithSourceLocationEnabled(cfg.AddSource),
			slogcp.WithTraceProjectID(cfg.ProjectID),
		)
	} else {
		target, err = slogcp.NewHandler(w,
			slogcp.WithLevel(level),
			slogcp.WithSourceLocationEnabled(cfg.AddSource),
		)
	}
	if err != nil {
		return nil, err
	}
	return &GCP{Slog: NewSlog(target, level, bubble), cfg: cfg}, nil
}

func (h *GCP) Config() GCPConfig { return h.cfg }
