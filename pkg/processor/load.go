package processor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Load average windows.
const (
	LoadAverage1  = 0
	LoadAverage5  = 1
	LoadAverage15 = 2
)

// ErrInvalidLoadAverage is returned for windows other than 1, 5 and 15 minutes.
var ErrInvalidLoadAverage = errors.New("processor: load average must be 1, 5 or 15")

// LoadAverage adds the system load average as extra "load_average".
// Records are left untouched where /proc/loadavg is not available.
type LoadAverage struct {
	path  string
	index int
}

// NewLoadAverage creates the processor for a window in minutes (1, 5 or 15).
func NewLoadAverage(minutes int) (*LoadAverage, error) {
	p := &LoadAverage{path: "/proc/loadavg"}
	switch minutes {
	case 1:
		p.index = LoadAverage1
	case 5:
		p.index = LoadAverage5
	case 15:
		p.index = LoadAverage15
	default:
		return nil, ErrInvalidLoadAverage
	}
	return p, nil
}

func (p *LoadAverage) Process(_ context.Context, rec logger.Record) logger.Record {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return rec
	}
	fields := strings.Fields(string(data))
	if len(fields) <= p.index {
		return rec
	}
	avg, err := strconv.ParseFloat(fields[p.index], 64)
	if err != nil {
		return rec
	}
	rec.AddExtra(slog.Float64("load_average", avg))
	return rec
}
