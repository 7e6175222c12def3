package slogfactory

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/slogfactory/internal"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Type aliases - public API
type (
	// Container builds loggers and service clients from a Config.
	// It caches every built service and closes them in reverse order.
	Container = internal.Container

	// Config is the declarative description of loggers and service clients.
	Config = internal.Config

	// ClientConfig selects a service client type and its options.
	ClientConfig = internal.ClientConfig

	// PluginConfig holds per-category plugin settings such as aliases.
	PluginConfig = internal.PluginConfig

	// Options is an untyped option map as produced by the YAML decoder.
	Options = internal.Options

	// Option configures the container.
	Option = internal.Option

	// Logger is the logger built for a configured service.
	Logger = logger.Logger

	// ActivationStrategy decides when a fingers crossed handler flushes its buffer.
	ActivationStrategy = handler.ActivationStrategy
)

// Factory builds a plugin of type T from its options.
type Factory[T any] = internal.Factory[T]

// PluginManager resolves plugin names and aliases to factories.
type PluginManager[T any] = internal.PluginManager[T]

// Errors
var (
	// ErrServiceNotFound means a service, plugin or nested dependency could not be resolved.
	ErrServiceNotFound = internal.ErrServiceNotFound

	// ErrServiceNotCreated means the configuration of a service is invalid
	// or its constructor failed.
	ErrServiceNotCreated = internal.ErrServiceNotCreated

	ErrOptionsNotArray       = internal.ErrOptionsNotArray
	ErrHandlersNotArray      = internal.ErrHandlersNotArray
	ErrProcessorsNotArray    = internal.ErrProcessorsNotArray
	ErrHandlerTypeMissing    = internal.ErrHandlerTypeMissing
	ErrFormatterTypeMissing  = internal.ErrFormatterTypeMissing
	ErrProcessorTypeMissing  = internal.ErrProcessorTypeMissing
	ErrStrategyTypeMissing   = internal.ErrStrategyTypeMissing
	ErrNoActiveHandlers      = internal.ErrNoActiveHandlers
	ErrInvalidTimezone       = internal.ErrInvalidTimezone
	ErrFormatterNotSupported = internal.ErrFormatterNotSupported
	ErrProcessorNotSupported = internal.ErrProcessorNotSupported
	ErrContainerClosed       = internal.ErrContainerClosed
)

// Constructors

// New creates a container for cfg. Client types and client references are
// validated up front; loggers and clients are built on first use.
//
// Example:
//
//	cfg, err := slogfactory.LoadConfig("logging.yaml")
//	if err != nil {
//	    return err
//	}
//	c, err := slogfactory.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	log, err := c.Logger("app")
func New(cfg Config, opts ...Option) (*Container, error) {
	return internal.New(cfg, opts...)
}

// LoadConfig reads a YAML configuration file. ${VAR} references are
// replaced with environment values before parsing.
func LoadConfig(path string) (Config, error) {
	return internal.LoadConfig(path)
}

// ParseConfig decodes a YAML configuration document.
func ParseConfig(data []byte) (Config, error) {
	return internal.ParseConfig(data)
}

// Container options

// WithContext sets the context used to build service clients.
// Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return internal.WithContext(ctx)
}

// WithLogger sets the logger for container diagnostics.
// Diagnostics are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithService registers a ready-made service, e.g. a shared redis client
// or a *slog.Logger referenced by a slog handler.
func WithService(name string, service any) Option {
	return internal.WithService(name, service)
}

// WithHandlerFactory registers or replaces a handler type.
//
// Example:
//
//	slogfactory.WithHandlerFactory("audit", func(c *slogfactory.Container, _ string, options any) (logger.Handler, error) {
//	    return audit.NewHandler(), nil
//	})
func WithHandlerFactory(name string, f Factory[logger.Handler]) Option {
	return internal.WithHandlerFactory(name, f)
}

// WithFormatterFactory registers or replaces a formatter type.
func WithFormatterFactory(name string, f Factory[logger.Formatter]) Option {
	return internal.WithFormatterFactory(name, f)
}

// WithProcessorFactory registers or replaces a processor type.
func WithProcessorFactory(name string, f Factory[logger.Processor]) Option {
	return internal.WithProcessorFactory(name, f)
}

// WithActivationStrategyFactory registers or replaces an activation strategy type.
func WithActivationStrategyFactory(name string, f Factory[ActivationStrategy]) Option {
	return internal.WithActivationStrategyFactory(name, f)
}

// WithClientFactory registers or replaces a service client type.
func WithClientFactory(name string, f Factory[any]) Option {
	return internal.WithClientFactory(name, f)
}

// Built-in plugins

// DefaultHandlerFactories returns the built-in handler types.
func DefaultHandlerFactories() map[string]Factory[logger.Handler] {
	return internal.DefaultHandlerFactories()
}

// DefaultFormatterFactories returns the built-in formatter types.
func DefaultFormatterFactories() map[string]Factory[logger.Formatter] {
	return internal.DefaultFormatterFactories()
}

// DefaultProcessorFactories returns the built-in processor types.
func DefaultProcessorFactories() map[string]Factory[logger.Processor] {
	return internal.DefaultProcessorFactories()
}

// DefaultActivationStrategyFactories returns the built-in activation strategies.
func DefaultActivationStrategyFactories() map[string]Factory[ActivationStrategy] {
	return internal.DefaultActivationStrategyFactories()
}

// DefaultClientFactories returns the built-in service client types.
func DefaultClientFactories() map[string]Factory[any] {
	return internal.DefaultClientFactories()
}
