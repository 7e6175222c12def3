package processor

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Tag adds a fixed list of tags to every record as extra "tags".
type Tag struct {
	mu   sync.RWMutex
	tags []string
}

// NewTag creates a Tag processor.
func NewTag(tags ...string) *Tag {
	return &Tag{tags: slices.Clone(tags)}
}

// AddTags appends tags.
func (p *Tag) AddTags(tags ...string) {
	p.mu.Lock()
	p.tags = append(p.tags, tags...)
	p.mu.Unlock()
}

// SetTags replaces the tags.
func (p *Tag) SetTags(tags ...string) {
	p.mu.Lock()
	p.tags = slices.Clone(tags)
	p.mu.Unlock()
}

// Tags returns a copy of the tags.
func (p *Tag) Tags() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.tags)
}

func (p *Tag) Process(_ context.Context, rec logger.Record) logger.Record {
	rec.AddExtra(slog.Any("tags", p.Tags()))
	return rec
}
