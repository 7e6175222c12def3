package processor

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Hostname adds the machine host name as extra "hostname".
type Hostname struct {
	name string
}

// NewHostname resolves the host name once.
func NewHostname() *Hostname {
	name, err := os.Hostname()
	if err != nil {
		name = "localhost"
	}
	return &Hostname{name: name}
}

func (p *Hostname) Process(_ context.Context, rec logger.Record) logger.Record {
	rec.AddExtra(slog.String("hostname", p.name))
	return rec
}

// ProcessID adds the current process id as extra "process_id".
type ProcessID struct {
	pid int
}

func NewProcessID() *ProcessID {
	return &ProcessID{pid: os.Getpid()}
}

func (p *ProcessID) Process(_ context.Context, rec logger.Record) logger.Record {
	rec.AddExtra(slog.Int("process_id", p.pid))
	return rec
}
