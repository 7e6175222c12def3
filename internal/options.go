package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Option configures the container.
type Option func(*Container)

// WithContext sets the context used to build service clients and run
// migrations. Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(c *Container) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the logger for container diagnostics such as skipped
// handlers and client lifecycle. Diagnostics are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithService registers a ready-made service under name. Registered
// services take precedence over configured loggers and clients.
//
// Example:
//
//	slogfactory.New(cfg,
//	    slogfactory.WithService("cache", redisClient),
//	)
func WithService(name string, service any) Option {
	return func(c *Container) {
		c.services[name] = service
	}
}

// WithHandlerFactory registers or replaces a handler type.
func WithHandlerFactory(name string, f Factory[logger.Handler]) Option {
	return func(c *Container) {
		c.handlerFactories[name] = f
	}
}

// WithFormatterFactory registers or replaces a formatter type.
func WithFormatterFactory(name string, f Factory[logger.Formatter]) Option {
	return func(c *Container) {
		c.formatterFactories[name] = f
	}
}

// WithProcessorFactory registers or replaces a processor type.
func WithProcessorFactory(name string, f Factory[logger.Processor]) Option {
	return func(c *Container) {
		c.processorFactories[name] = f
	}
}

// WithActivationStrategyFactory registers or replaces an activation strategy type.
func WithActivationStrategyFactory(name string, f Factory[handler.ActivationStrategy]) Option {
	return func(c *Container) {
		c.strategyFactories[name] = f
	}
}

// WithClientFactory registers or replaces a service client type.
func WithClientFactory(name string, f Factory[any]) Option {
	return func(c *Container) {
		c.clientFactories[name] = f
	}
}
