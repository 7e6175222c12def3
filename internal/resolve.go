package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// getHandler builds one handler from its nested config
// ({type, enabled, options}). A disabled config is skipped: it returns
// (nil, false, nil). Plugin manager failures are reported as
// ErrServiceNotFound wrapping the cause.
func (c *Container) getHandler(v any) (logger.Handler, bool, error) {
	if h, ok := v.(logger.Handler); ok {
		return h, true, nil
	}

	cfg, err := toOptions(v)
	if err != nil {
		return nil, false, err
	}
	enabled, err := isEnabled(cfg)
	if err != nil {
		return nil, false, err
	}
	if !enabled {
		return nil, false, nil
	}

	typ := cast.ToString(cfg["type"])
	if typ == "" {
		return nil, false, notCreated(ErrHandlerTypeMissing)
	}

	options := cfg["options"]
	h, err := c.handlers.Get(typ, options)
	if err != nil {
		return nil, false, notFound(fmt.Sprintf("handler %q", typ), err)
	}

	if opts, err := toOptions(options); err == nil {
		if err := c.addFormatter(h, opts); err != nil {
			return nil, false, errors.Join(err, h.Close())
		}
		if err := c.addProcessors(h, opts); err != nil {
			return nil, false, errors.Join(err, h.Close())
		}
	}
	return h, true, nil
}

// getHandlers builds the "handlers" sequence of opts in declaration order.
// Disabled and unresolvable entries are dropped; at least one must remain.
// built holds the members created from configs, which the caller owns; on
// error they are already closed.
func (c *Container) getHandlers(opts Options) (handlers, built []logger.Handler, err error) {
	raw, err := requireKey(opts, "handlers")
	if err != nil {
		return nil, nil, err
	}
	list, ok := toSlice(raw)
	if !ok {
		return nil, nil, notCreated(ErrHandlersNotArray)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, closeHandlers(built))
			handlers, built = nil, nil
		}
	}()

	handlers = make([]logger.Handler, 0, len(list))
	for i, item := range list {
		if h, ok := item.(logger.Handler); ok {
			handlers = append(handlers, h)
			continue
		}
		if _, err := toOptions(item); err != nil {
			return nil, built, notCreatedf("handler at position %d must be a handler or a config map", i)
		}

		h, ok, err := c.getHandler(item)
		if errors.Is(err, ErrServiceNotFound) {
			c.log.Warn("handler skipped", slog.Int("position", i), slog.String("error", err.Error()))
			continue
		}
		if err != nil {
			return nil, built, err
		}
		if ok {
			handlers = append(handlers, h)
			built = append(built, h)
		}
	}

	if len(handlers) == 0 {
		return nil, built, notCreated(ErrNoActiveHandlers)
	}
	return handlers, built, nil
}

// closeHandlers closes hs in reverse order and joins their errors.
func closeHandlers(hs []logger.Handler) error {
	errs := make([]error, 0, len(hs))
	for _, h := range slices.Backward(hs) {
		errs = append(errs, h.Close())
	}
	return errors.Join(errs...)
}

// childHandler builds the handler wrapped by buffer, filter and similar handlers.
func (c *Container) childHandler(opts Options) (logger.Handler, error) {
	v, err := requireKey(opts, "handler")
	if err != nil {
		return nil, err
	}
	if _, isHandler := v.(logger.Handler); !isHandler {
		if _, err := toOptions(v); err != nil {
			return nil, notCreatedf("handler must be a handler or a config map")
		}
	}
	h, ok, err := c.getHandler(v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notCreatedf("handler is disabled")
	}
	return h, nil
}

// addFormatter attaches opts["formatter"] to h, if present.
func (c *Container) addFormatter(h logger.Handler, opts Options) error {
	v, ok := opts["formatter"]
	if !ok || v == nil {
		return nil
	}

	f, ok := v.(logger.Formatter)
	if !ok {
		cfg, err := toOptions(v)
		if err != nil {
			return notCreatedf("formatter must be a formatter or a config map")
		}
		enabled, err := isEnabled(cfg)
		if err != nil {
			return err
		}
		if !enabled {
			return nil
		}
		typ := cast.ToString(cfg["type"])
		if typ == "" {
			return notCreated(ErrFormatterTypeMissing)
		}
		if f, err = c.formatters.Get(typ, cfg["options"]); err != nil {
			return fmt.Errorf("%w: formatter %q: %v", ErrServiceNotCreated, typ, err)
		}
	}

	fh, ok := h.(logger.FormattableHandler)
	if !ok || !handler.AcceptsFormatter(h) {
		return notCreated(ErrFormatterNotSupported)
	}
	fh.SetFormatter(f)
	return nil
}

// addProcessors attaches opts["processors"] to h so that the first
// declared processor runs first.
func (c *Container) addProcessors(h logger.Handler, opts Options) error {
	v, ok := opts["processors"]
	if !ok || v == nil {
		return nil
	}
	processors, err := c.resolveProcessors(v)
	if err != nil {
		return err
	}
	if len(processors) == 0 {
		return nil
	}

	ph, ok := h.(logger.ProcessableHandler)
	if !ok {
		return notCreated(ErrProcessorNotSupported)
	}
	for i := len(processors) - 1; i >= 0; i-- {
		ph.PushProcessor(processors[i])
	}
	return nil
}

// resolveProcessors builds a processor sequence in declaration order.
// Disabled entries and entries the plugin manager cannot build are dropped;
// malformed entries fail.
func (c *Container) resolveProcessors(v any) ([]logger.Processor, error) {
	list, ok := toSlice(v)
	if !ok {
		return nil, notCreated(ErrProcessorsNotArray)
	}

	processors := make([]logger.Processor, 0, len(list))
	for i, item := range list {
		switch p := item.(type) {
		case logger.Processor:
			processors = append(processors, p)
			continue
		case func(context.Context, logger.Record) logger.Record:
			processors = append(processors, logger.ProcessorFunc(p))
			continue
		}

		cfg, err := toOptions(item)
		if err != nil {
			return nil, notCreatedf("processor at position %d must be a processor or a config map", i)
		}
		enabled, err := isEnabled(cfg)
		if err != nil {
			return nil, err
		}
		if !enabled {
			continue
		}
		typ := cast.ToString(cfg["type"])
		if typ == "" {
			return nil, notCreated(ErrProcessorTypeMissing)
		}

		p, err := c.processors.Get(typ, cfg["options"])
		if err != nil {
			err = notFound(fmt.Sprintf("processor %q", typ), err)
			c.log.Warn("processor skipped", slog.Int("position", i), slog.String("error", err.Error()))
			continue
		}
		processors = append(processors, p)
	}
	return processors, nil
}

// resolveStrategy turns an activation_strategy option into a strategy.
// Accepted: a strategy, a config map, a service name or a level.
// nil means the handler default.
func (c *Container) resolveStrategy(v any) (handler.ActivationStrategy, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case handler.ActivationStrategy:
		return s, nil
	case string:
		if c.Has(s) {
			svc, err := c.Get(s)
			if err != nil {
				return nil, err
			}
			strategy, ok := svc.(handler.ActivationStrategy)
			if !ok {
				return nil, notCreatedf("service %q is %T, not an activation strategy", s, svc)
			}
			return strategy, nil
		}
	}

	if cfg, err := toOptions(v); err == nil {
		typ := cast.ToString(cfg["type"])
		if typ == "" {
			return nil, notCreated(ErrStrategyTypeMissing)
		}
		strategy, err := c.strategies.Get(typ, cfg["options"])
		if err != nil {
			return nil, fmt.Errorf("%w: activation strategy %q: %v", ErrServiceNotCreated, typ, err)
		}
		return strategy, nil
	}

	level, err := logger.ParseLevel(v)
	if err != nil {
		return nil, invalidOption("activation_strategy", err)
	}
	return handler.NewErrorLevelActivation(level), nil
}
