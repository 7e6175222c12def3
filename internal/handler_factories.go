package internal

import (
	"errors"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/cache"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultHandlerFactories returns the built-in handler types.
func DefaultHandlerFactories() map[string]Factory[logger.Handler] {
	return map[string]Factory[logger.Handler]{
		"noop":             noopHandlerFactory,
		"null":             nullHandlerFactory,
		"test":             testHandlerFactory,
		"stream":           streamHandlerFactory,
		"error_log":        errorLogHandlerFactory,
		"rotating_file":    rotatingFileHandlerFactory,
		"socket":           socketHandlerFactory,
		"syslog_udp":       syslogUDPHandlerFactory,
		"buffer":           bufferHandlerFactory,
		"deduplication":    deduplicationHandlerFactory,
		"filter":           filterHandlerFactory,
		"fingers_crossed":  fingersCrossedHandlerFactory,
		"group":            groupHandlerFactory,
		"whatfailuregroup": whatFailureGroupHandlerFactory,
		"fallbackgroup":    fallbackGroupHandlerFactory,
		"sampling":         samplingHandlerFactory,
		"overflow":         overflowHandlerFactory,
		"redis":            redisHandlerFactory,
		"redis_pubsub":     redisPubSubHandlerFactory,
		"postgres":         postgresHandlerFactory,
		"queue":            queueHandlerFactory,
		"s3":               s3HandlerFactory,
		"mail":             mailHandlerFactory,
		"sentry":           sentryHandlerFactory,
		"gcp":              gcpHandlerFactory,
		"slog":             slogHandlerFactory,
		"webhook":          webhookHandlerFactory,
		"slack_webhook":    slackWebhookHandlerFactory,
	}
}

func noopHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	if _, err := optionalOptions(options); err != nil {
		return nil, err
	}
	return handler.NewNoop(), nil
}

func nullHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, err := levelOpt(opts, "level", logger.LevelDebug)
	if err != nil {
		return nil, err
	}
	return handler.NewNull(level), nil
}

func testHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	return handler.NewTest(level, bubble), nil
}

// streamHandlerFactory accepts "stdout", "stderr", a file path or an io.Writer.
func streamHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	stream, err := requireKey(opts, "stream")
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}

	perm := handler.DefaultFilePermission
	if v, ok := opts["file_permission"]; ok && v != nil {
		if perm, err = toFileMode(v); err != nil {
			return nil, invalidOption("file_permission", err)
		}
	}
	locking, err := boolOpt(opts, "use_locking", false)
	if err != nil {
		return nil, err
	}
	streamOpts := []handler.StreamOption{
		handler.WithFilePermission(perm),
		handler.WithLocking(locking),
	}

	switch s := stream.(type) {
	case io.Writer:
		return handler.NewStream(s, level, bubble, streamOpts...), nil
	case string:
		switch s {
		case "":
			return nil, requiredError("stream")
		case "stdout":
			return handler.NewStream(os.Stdout, level, bubble, streamOpts...), nil
		case "stderr":
			return handler.NewStream(os.Stderr, level, bubble, streamOpts...), nil
		}
		h, err := handler.NewStreamFile(s, level, bubble, streamOpts...)
		if err != nil {
			return nil, notCreated(err)
		}
		return h, nil
	}
	return nil, notCreatedf("stream must be stdout, stderr, a path or a writer, got %T", stream)
}

// errorLogHandlerFactory writes to stderr through a dedicated *log.Logger.
// log.Default() is avoided because the error handler redirects it into the logger.
func errorLogHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	expand, err := boolOpt(opts, "expand_newlines", false)
	if err != nil {
		return nil, err
	}
	return handler.NewErrorLog(log.New(os.Stderr, "", log.LstdFlags), level, bubble, expand), nil
}

func rotatingFileHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	cfg := handler.DefaultRotatingFileConfig()
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.Filename == "" {
		return nil, requiredError("filename")
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewRotatingFile(cfg, level, bubble)
	if err != nil {
		return nil, notCreated(err)
	}
	return h, nil
}

func socketHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	conn, err := requireString(opts, "connection_string")
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	timeout, err := durationOpt(opts, "timeout", handler.DefaultSocketTimeout)
	if err != nil {
		return nil, err
	}
	persistent, err := boolOpt(opts, "persistent", true)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewSocket(conn, level, bubble,
		handler.WithTimeout(timeout),
		handler.WithPersistent(persistent),
	)
	if err != nil {
		return nil, notCreated(err)
	}
	return h, nil
}

func syslogUDPHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	cfg := handler.DefaultSyslogUDPConfig()
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.Host == "" {
		return nil, requiredError("host")
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewSyslogUDP(cfg, level, bubble)
	if err != nil {
		return nil, notCreated(err)
	}
	return h, nil
}

func bufferHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	limit, err := intOpt(opts, "buffer_limit", 0)
	if err != nil {
		return nil, err
	}
	flushOnOverflow, err := boolOpt(opts, "flush_on_overflow", false)
	if err != nil {
		return nil, err
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, err
	}
	return handler.NewBuffer(inner, limit, level, bubble, flushOnOverflow), nil
}

// deduplicationHandlerFactory keeps seen records in memory, or in redis
// when a client is given or store is "redis".
func deduplicationHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	dedupLevel, err := levelOpt(opts, "deduplication_level", logger.LevelError)
	if err != nil {
		return nil, err
	}
	ttl, err := durationOpt(opts, "time", handler.DefaultDeduplicationTime)
	if err != nil {
		return nil, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return nil, err
	}
	store, err := dedupStore(c, opts)
	if err != nil {
		return nil, err
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return handler.NewDeduplication(inner, store, dedupLevel, ttl, bubble), nil
}

func dedupStore(c *Container, opts Options) (cache.Store, error) {
	if s, ok := opts["store"].(cache.Store); ok {
		return s, nil
	}
	kind, err := stringOpt(opts, "store", "memory")
	if err != nil {
		return nil, err
	}
	if _, hasClient := opts["client"]; hasClient {
		kind = "redis"
	}

	switch kind {
	case "memory":
		return cache.NewMemory(), nil
	case "redis":
		client, err := redisClient(c, opts)
		if err != nil {
			return nil, err
		}
		var storeOpts []cache.RedisOption
		if prefix, _ := stringOpt(opts, "prefix", ""); prefix != "" {
			storeOpts = append(storeOpts, cache.WithPrefix(prefix))
		}
		return cache.NewRedis(client, storeOpts...), nil
	}
	return nil, notCreatedf("unknown deduplication store %q", kind)
}

// filterHandlerFactory accepts min_level_or_list as a level or a list of
// accepted levels; max_level only applies to the former.
func filterHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return nil, err
	}

	if list, ok := toSlice(opts["min_level_or_list"]); ok {
		accepted := make([]slog.Level, 0, len(list))
		for _, item := range list {
			level, err := logger.ParseLevel(item)
			if err != nil {
				return nil, invalidOption("min_level_or_list", err)
			}
			accepted = append(accepted, level)
		}
		inner, err := c.childHandler(opts)
		if err != nil {
			return nil, err
		}
		return handler.NewFilter(inner, accepted, bubble), nil
	}

	minLevel, err := levelOpt(opts, "min_level_or_list", logger.LevelDebug)
	if err != nil {
		return nil, err
	}
	maxLevel, err := levelOpt(opts, "max_level", logger.LevelEmergency)
	if err != nil {
		return nil, err
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, err
	}
	return handler.NewFilterRange(inner, minLevel, maxLevel, bubble), nil
}

func fingersCrossedHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	strategy, err := c.resolveStrategy(opts["activation_strategy"])
	if err != nil {
		return nil, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return nil, err
	}
	size, err := intOpt(opts, "buffer_size", 0)
	if err != nil {
		return nil, err
	}
	stop, err := boolOpt(opts, "stop_buffering", true)
	if err != nil {
		return nil, err
	}

	fcOpts := []handler.FingersCrossedOption{
		handler.WithBufferSize(size),
		handler.WithStopBuffering(stop),
	}
	if v, ok := opts["passthru_level"]; ok && v != nil {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return nil, invalidOption("passthru_level", err)
		}
		fcOpts = append(fcOpts, handler.WithPassthruLevel(level))
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, err
	}
	return handler.NewFingersCrossed(inner, strategy, bubble, fcOpts...), nil
}

// buildGroup reads bubble before building the members so that a bad option
// never leaves built members behind.
func buildGroup[H logger.Handler](c *Container, options any, build func([]logger.Handler, bool) (H, error)) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return nil, err
	}
	handlers, built, err := c.getHandlers(opts)
	if err != nil {
		return nil, err
	}
	h, err := build(handlers, bubble)
	if err != nil {
		return nil, errors.Join(notCreated(err), closeHandlers(built))
	}
	return h, nil
}

func groupHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	return buildGroup(c, options, handler.NewGroup)
}

func whatFailureGroupHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	return buildGroup(c, options, handler.NewWhatFailureGroup)
}

func fallbackGroupHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	return buildGroup(c, options, handler.NewFallbackGroup)
}

func samplingHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	if _, err := requireKey(opts, "factor"); err != nil {
		return nil, err
	}
	factor, err := intOpt(opts, "factor", 0)
	if err != nil {
		return nil, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return nil, err
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewSampling(inner, factor, bubble)
	if err != nil {
		if _, ready := opts["handler"].(logger.Handler); ready {
			return nil, notCreated(err)
		}
		return nil, errors.Join(notCreated(err), inner.Close())
	}
	return h, nil
}

func overflowHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}

	thresholds := make(map[slog.Level]int)
	if v, ok := opts["threshold_map"]; ok && v != nil {
		raw, err := toOptions(v)
		if err != nil {
			return nil, notCreatedf("threshold_map must be a map of levels")
		}
		for name, count := range raw {
			lvl, err := logger.ParseLevel(name)
			if err != nil {
				return nil, invalidOption("threshold_map", err)
			}
			n, err := cast.ToIntE(count)
			if err != nil {
				return nil, invalidOption("threshold_map", err)
			}
			thresholds[lvl] = n
		}
	}
	inner, err := c.childHandler(opts)
	if err != nil {
		return nil, err
	}
	return handler.NewOverflow(inner, thresholds, level, bubble), nil
}
