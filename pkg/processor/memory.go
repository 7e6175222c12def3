package processor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

type memory struct {
	peak       atomic.Uint64
	realUsage  bool
	formatting bool
}

func (m *memory) read() (current, peak uint64) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	current = stats.HeapAlloc
	if m.realUsage {
		current = stats.Sys
	}
	for {
		old := m.peak.Load()
		if current <= old || m.peak.CompareAndSwap(old, current) {
			break
		}
	}
	return current, m.peak.Load()
}

func (m *memory) value(key string, bytes uint64) slog.Attr {
	if m.formatting {
		return slog.String(key, formatBytes(bytes))
	}
	return slog.Uint64(key, bytes)
}

// MemoryUsage adds the current memory usage as extra "memory_usage".
// With realUsage the memory obtained from the OS is reported instead of the live heap.
type MemoryUsage struct {
	memory
}

func NewMemoryUsage(realUsage, formatting bool) *MemoryUsage {
	return &MemoryUsage{memory{realUsage: realUsage, formatting: formatting}}
}

func (p *MemoryUsage) Process(_ context.Context, rec logger.Record) logger.Record {
	current, _ := p.read()
	rec.AddExtra(p.value("memory_usage", current))
	return rec
}

// MemoryPeakUsage adds the highest usage observed by this processor as extra "memory_peak_usage".
type MemoryPeakUsage struct {
	memory
}

func NewMemoryPeakUsage(realUsage, formatting bool) *MemoryPeakUsage {
	return &MemoryPeakUsage{memory{realUsage: realUsage, formatting: formatting}}
}

func (p *MemoryPeakUsage) Process(_ context.Context, rec logger.Record) logger.Record {
	_, peak := p.read()
	rec.AddExtra(p.value("memory_peak_usage", peak))
	return rec
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
