package processor

import (
	"context"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Context adds attributes extracted from the request context to the record extra.
type Context struct {
	extractors []logger.ContextExtractor
}

func NewContext(extractors ...logger.ContextExtractor) *Context {
	return &Context{extractors: extractors}
}

func (p *Context) Process(ctx context.Context, rec logger.Record) logger.Record {
	if ctx == nil {
		return rec
	}
	for _, extract := range p.extractors {
		if extract == nil {
			continue
		}
		if attr, ok := extract(ctx); ok {
			rec.AddExtra(attr)
		}
	}
	return rec
}
