package internal

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// newLogger builds a logger from its options:
//
//	name:          required channel name
//	timezone:      IANA zone name or *time.Location
//	handlers:      handlers or handler configs, pushed in order
//	processors:    processors or processor configs, first declared runs first
//	error_handler: false, or {enabled, std_log_level, error_level, panic_level, repanic}
func newLogger(c *Container, options any) (*logger.Logger, *logger.ErrorHandler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, nil, err
	}
	name, err := requireString(opts, "name")
	if err != nil {
		return nil, nil, err
	}

	l := logger.New(name)
	fail := func(err error) (*logger.Logger, *logger.ErrorHandler, error) {
		return nil, nil, errors.Join(err, l.Close())
	}

	if v, ok := opts["timezone"]; ok && v != nil {
		loc, err := toLocation(v)
		if err != nil {
			return fail(err)
		}
		l.SetTimezone(loc)
	}

	if v, ok := opts["handlers"]; ok && v != nil {
		list, ok := toSlice(v)
		if !ok {
			return fail(notCreated(ErrHandlersNotArray))
		}
		for i, item := range list {
			if h, ok := item.(logger.Handler); ok {
				l.PushHandler(h)
				continue
			}
			if _, err := toOptions(item); err != nil {
				return fail(notCreatedf("handler at position %d must be a handler or a config map", i))
			}
			h, ok, err := c.getHandler(item)
			if errors.Is(err, ErrServiceNotFound) {
				c.log.Warn("handler skipped",
					slog.String("logger", name),
					slog.Int("position", i),
					slog.String("error", err.Error()),
				)
				continue
			}
			if err != nil {
				return fail(err)
			}
			if ok {
				l.PushHandler(h)
			}
		}
	}

	if v, ok := opts["processors"]; ok && v != nil {
		processors, err := c.resolveProcessors(v)
		if err != nil {
			return fail(err)
		}
		for i := len(processors) - 1; i >= 0; i-- {
			l.PushProcessor(processors[i])
		}
	}

	ehCfg, enabled, err := errorHandlerConfig(opts["error_handler"])
	if err != nil {
		return fail(err)
	}
	var eh *logger.ErrorHandler
	if enabled {
		eh = logger.RegisterErrorHandler(l, ehCfg)
	}
	return l, eh, nil
}

func toLocation(v any) (*time.Location, error) {
	switch tz := v.(type) {
	case *time.Location:
		if tz != nil {
			return tz, nil
		}
	case string:
		if tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				return loc, nil
			}
		}
	}
	return nil, notCreated(ErrInvalidTimezone)
}

// errorHandlerConfig reads the error_handler option: absent or true enables
// the defaults, false disables, a map overrides individual levels.
func errorHandlerConfig(v any) (logger.ErrorHandlerConfig, bool, error) {
	cfg := logger.DefaultErrorHandlerConfig()
	if v == nil {
		return cfg, true, nil
	}
	if _, isMap := v.(Options); !isMap {
		if _, isMap := v.(map[any]any); !isMap {
			enabled, err := cast.ToBoolE(v)
			if err != nil {
				return cfg, false, invalidOption("error_handler", err)
			}
			return cfg, enabled, nil
		}
	}

	opts, err := toOptions(v)
	if err != nil {
		return cfg, false, err
	}
	enabled, err := isEnabled(opts)
	if err != nil || !enabled {
		return cfg, false, err
	}
	if cfg.StdLogLevel, err = levelOpt(opts, "std_log_level", cfg.StdLogLevel); err != nil {
		return cfg, false, err
	}
	if cfg.ErrorLevel, err = levelOpt(opts, "error_level", cfg.ErrorLevel); err != nil {
		return cfg, false, err
	}
	if cfg.PanicLevel, err = levelOpt(opts, "panic_level", cfg.PanicLevel); err != nil {
		return cfg, false, err
	}
	if cfg.Repanic, err = boolOpt(opts, "repanic", cfg.Repanic); err != nil {
		return cfg, false, err
	}
	return cfg, true, nil
}
