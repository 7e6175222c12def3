package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/slogfactory/pkg/db"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/health"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
	"github.com/dmitrymomot/slogfactory/pkg/redis"
)

// Plugin categories.
const (
	CategoryHandler   = "handler"
	CategoryFormatter = "formatter"
	CategoryProcessor = "processor"
	CategoryStrategy  = "activation strategy"
	CategoryClient    = "service client"
)

const clientFlushTimeout = 2 * time.Second

// Container builds loggers and service clients from a Config and caches
// them by service name. It is safe for concurrent use.
type Container struct {
	ctx    context.Context
	log    *slog.Logger
	cfg    Config
	builds singleflight.Group

	services           map[string]any
	handlerFactories   map[string]Factory[logger.Handler]
	formatterFactories map[string]Factory[logger.Formatter]
	processorFactories map[string]Factory[logger.Processor]
	strategyFactories  map[string]Factory[handler.ActivationStrategy]
	clientFactories    map[string]Factory[any]

	handlers   *PluginManager[logger.Handler]
	formatters *PluginManager[logger.Formatter]
	processors *PluginManager[logger.Processor]
	strategies *PluginManager[handler.ActivationStrategy]
	clients    *PluginManager[any]

	mu            sync.Mutex
	built         map[string]any
	errorHandlers map[string]*logger.ErrorHandler
	order         []string
	closed        bool
}

// New creates a container for cfg. Nothing is built until requested.
//
// Example:
//
//	cfg, err := slogfactory.LoadConfig("logging.yaml")
//	if err != nil {
//	    return err
//	}
//	c, err := slogfactory.New(cfg, slogfactory.WithLogger(diag))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	log, err := c.Logger("app")
func New(cfg Config, opts ...Option) (*Container, error) {
	c := &Container{
		ctx:                context.Background(),
		log:                logger.NewNope(),
		cfg:                cfg,
		services:           make(map[string]any),
		handlerFactories:   DefaultHandlerFactories(),
		formatterFactories: DefaultFormatterFactories(),
		processorFactories: DefaultProcessorFactories(),
		strategyFactories:  DefaultActivationStrategyFactories(),
		clientFactories:    DefaultClientFactories(),
		built:              make(map[string]any),
		errorHandlers:      make(map[string]*logger.ErrorHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.handlers = newPluginManager(c, CategoryHandler, cfg.Handlers.Aliases, c.handlerFactories)
	c.formatters = newPluginManager(c, CategoryFormatter, cfg.Formatters.Aliases, c.formatterFactories)
	c.processors = newPluginManager(c, CategoryProcessor, cfg.Processors.Aliases, c.processorFactories)
	c.strategies = newPluginManager(c, CategoryStrategy, cfg.ActivationStrategies.Aliases, c.strategyFactories)
	c.clients = newPluginManager(c, CategoryClient, cfg.ServiceClients.Aliases, c.clientFactories)

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks what can be checked without building anything:
// client types must be registered and client references must not loop.
func (c *Container) validate() error {
	for _, name := range slices.Sorted(maps.Keys(c.cfg.Clients)) {
		cc := c.cfg.Clients[name]
		if cc.Type == "" {
			return notCreatedf("client %q must contain a type", name)
		}
		if !c.clients.Has(cc.Type) {
			return notFound(fmt.Sprintf("client %q", name), notFound(fmt.Sprintf("%s plugin %q", CategoryClient, cc.Type), nil))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(c.cfg.Clients)) {
		seen := map[string]bool{name: true}
		for ref := clientRef(c.cfg.Clients[name]); ref != ""; ref = clientRef(c.cfg.Clients[ref]) {
			if seen[ref] {
				return notCreatedf("client %q has a circular client reference", name)
			}
			seen[ref] = true
		}
	}
	return nil
}

func clientRef(cc ClientConfig) string {
	opts, err := toOptions(cc.Options)
	if err != nil {
		return ""
	}
	ref, _ := opts["client"].(string)
	return ref
}

// Has reports whether name is a registered service, a configured logger or a configured client.
func (c *Container) Has(name string) bool {
	if _, ok := c.services[name]; ok {
		return true
	}
	if _, ok := c.cfg.Loggers[name]; ok {
		return true
	}
	_, ok := c.cfg.Clients[name]
	return ok
}

// Get returns the service registered or configured under name, building
// and caching it on first use. Concurrent first calls share one build.
func (c *Container) Get(name string) (any, error) {
	if s, ok := c.services[name]; ok {
		return s, nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, notCreated(ErrContainerClosed)
	}
	if v, ok := c.built[name]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	if !c.Has(name) {
		return nil, notFound(fmt.Sprintf("service %q", name), nil)
	}

	v, err, _ := c.builds.Do(name, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.built[name]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, eh, err := c.build(name)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			if eh != nil {
				eh.Unregister()
			}
			return nil, errors.Join(notCreated(ErrContainerClosed), closeService(v))
		}
		c.built[name] = v
		c.order = append(c.order, name)
		if eh != nil {
			c.errorHandlers[name] = eh
		}
		return v, nil
	})
	return v, err
}

func (c *Container) build(name string) (any, *logger.ErrorHandler, error) {
	if opts, ok := c.cfg.Loggers[name]; ok {
		l, eh, err := newLogger(c, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("logger %q: %w", name, err)
		}
		c.log.Debug("logger built", slog.String("service", name), slog.Int("handlers", len(l.Handlers())))
		return l, eh, nil
	}

	cc := c.cfg.Clients[name]
	v, err := c.clients.Get(cc.Type, cc.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("client %q: %w", name, err)
	}
	c.log.Debug("client built", slog.String("service", name), slog.String("type", cc.Type))
	return v, nil, nil
}

// Logger returns the logger configured under name.
func (c *Container) Logger(name string) (*logger.Logger, error) {
	if _, ok := c.cfg.Loggers[name]; !ok {
		if _, ok := c.services[name]; !ok {
			return nil, notFound(fmt.Sprintf("logger %q", name), nil)
		}
	}
	v, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.(*logger.Logger)
	if !ok {
		return nil, notCreatedf("service %q is %T, not a logger", name, v)
	}
	return l, nil
}

// ErrorHandler returns the process-wide error handler registered for the
// logger under name. It is absent until the logger is built, or when the
// logger disables it.
func (c *Container) ErrorHandler(name string) (*logger.ErrorHandler, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	eh, ok := c.errorHandlers[name]
	return eh, ok
}

// HandlerManager returns the handler plugin manager.
func (c *Container) HandlerManager() *PluginManager[logger.Handler] { return c.handlers }

// FormatterManager returns the formatter plugin manager.
func (c *Container) FormatterManager() *PluginManager[logger.Formatter] { return c.formatters }

// ProcessorManager returns the processor plugin manager.
func (c *Container) ProcessorManager() *PluginManager[logger.Processor] { return c.processors }

// ActivationStrategyManager returns the activation strategy plugin manager.
func (c *Container) ActivationStrategyManager() *PluginManager[handler.ActivationStrategy] {
	return c.strategies
}

// ClientManager returns the service client plugin manager.
func (c *Container) ClientManager() *PluginManager[any] { return c.clients }

// Healthcheck checks every built client that supports it.
// Clients that were never requested are not built.
func (c *Container) Healthcheck(ctx context.Context) error {
	c.mu.Lock()
	checks := make(health.Checks)
	for name, v := range c.built {
		if check := healthcheckFor(v); check != nil {
			checks[name] = check
		}
	}
	c.mu.Unlock()

	return health.Run(ctx, checks, health.WithLogger(c.log)).Err()
}

func healthcheckFor(v any) health.CheckFunc {
	switch s := v.(type) {
	case *pgxpool.Pool:
		return db.Healthcheck(s)
	case goredis.UniversalClient:
		return redis.Healthcheck(s)
	case interface{ Healthcheck(context.Context) error }:
		return s.Healthcheck
	}
	return nil
}

// Close releases every built service in reverse build order.
// Loggers close their handlers and drop their error handlers.
// Calling Close more than once is a no-op.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	order := slices.Clone(c.order)
	built := maps.Clone(c.built)
	errorHandlers := maps.Clone(c.errorHandlers)
	c.mu.Unlock()

	var errs []error
	for _, name := range slices.Backward(order) {
		if eh, ok := errorHandlers[name]; ok {
			eh.Unregister()
		}
		if err := closeService(built[name]); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
			continue
		}
		c.log.Debug("service closed", slog.String("service", name))
	}
	return errors.Join(errs...)
}

func closeService(v any) error {
	switch s := v.(type) {
	case *sentry.Hub:
		if client := s.Client(); client != nil {
			client.Flush(clientFlushTimeout)
		}
	case *http.Client:
		s.CloseIdleConnections()
	case interface{ Close() error }:
		return s.Close()
	case interface{ Close() }:
		s.Close()
	}
	return nil
}
