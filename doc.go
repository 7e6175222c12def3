// Package slogfactory builds fully wired log/slog based loggers from a
// declarative configuration.
//
// A [Config] describes named loggers, each with a channel name, an optional
// timezone, a stack of handlers and a list of processors. Handlers, formatters,
// processors, activation strategies and service clients are plugins looked up
// by type name in per-category plugin managers, so a configuration never
// references Go types directly.
//
// # Quick Start
//
//	loggers:
//	  app:
//	    name: app
//	    timezone: Europe/Berlin
//	    handlers:
//	      - type: stream
//	        options:
//	          stream: stderr
//	          level: info
//	          formatter:
//	            type: json
//	      - type: fingers_crossed
//	        options:
//	          activation_strategy: error
//	          handler:
//	            type: rotating_file
//	            options:
//	              filename: /var/log/app.log
//	    processors:
//	      - type: uid
//	      - type: hostname
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
//	if err != nil {
//	    return err
//	}
//	log.Info(ctx, "started", "version", version)
//
// # Handlers
//
// Every entry under handlers is either a ready-made handler (when the
// configuration is built in Go) or a map with a type and options. An entry
// with enabled set to false is skipped. Unknown handler types are skipped
// with a warning on the diagnostic logger set by [WithLogger]; any other
// configuration error fails the build.
//
// Handlers are pushed onto the logger in declaration order, so the last
// configured handler sees records first. Wrapper handlers such as buffer,
// filter, deduplication and fingers_crossed take their wrapped handler under
// the handler key; groups take a handlers list.
//
// # Service Clients
//
// Handlers that talk to external systems reference a client by service name:
//
//	clients:
//	  cache:
//	    type: redis
//	    options:
//	      url: ${REDIS_URL}
//	loggers:
//	  app:
//	    name: app
//	    handlers:
//	      - type: redis
//	        options:
//	          client: cache
//	          key: logs
//
// Clients are built once, on first use, and closed by [Container.Close].
// Ready-made clients can be registered with [WithService].
//
// # Error Handler
//
// Unless error_handler is false, building a logger also makes it the
// process-wide default for log/slog and the standard library log package.
// The previous defaults are restored when the container is closed.
//
// # Custom Plugins
//
// Register additional plugin types with [WithHandlerFactory],
// [WithFormatterFactory], [WithProcessorFactory],
// [WithActivationStrategyFactory] and [WithClientFactory]. Aliases map
// alternative names to registered types:
//
//	handlers:
//	  aliases:
//	    console: stream
package slogfactory
