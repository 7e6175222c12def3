// Package logger provides the logging runtime assembled by slogfactory: named
// loggers with a handler stack and a processor stack, the contracts handlers,
// formatters and processors implement, and a bridge to log/slog.
//
// # Overview
//
// A Logger is a channel. Records created on it are enriched by the logger's
// processors and then offered to its handlers, top of the stack first:
//
//	log := logger.New("app",
//	    logger.WithHandlers(handler.NewStream(os.Stdout, logger.LevelInfo, true)),
//	    logger.WithProcessors(processor.NewUID(8)),
//	)
//	_ = log.Info(ctx, "user signed in", "user_id", 42)
//
// The first handler whose level accepts the record receives it, followed by every
// handler below it until one of them stops bubbling.
//
// # Levels
//
// Eight levels are defined on top of slog.Level: debug, info, notice, warning,
// error, critical, alert and emergency. ParseLevel understands level names,
// legacy numeric codes (100 to 600) and plain slog numbers, which makes it suitable
// for configuration files.
//
// # Stacks
//
// Handlers and processors are stacks: the last one pushed is used first. Code that
// wants "first declared, first executed" semantics pushes in reverse order.
//
// # Handlers
//
// Record-writing handlers embed Processing, which carries the level, the bubble
// flag, the handler's own processors and its formatter:
//
//	type myHandler struct {
//	    logger.Processing
//	}
//
//	func (h *myHandler) Handle(ctx context.Context, rec logger.Record) (bool, error) {
//	    return h.HandleWith(ctx, rec, func(ctx context.Context, rec logger.Record, out []byte) error {
//	        _, err := os.Stdout.Write(out)
//	        return err
//	    })
//	}
//
// # slog
//
// Logger.Slog returns a *slog.Logger whose records flow through the same stacks,
// so libraries written against log/slog can log into a configured channel.
//
// # Process-wide errors
//
// RegisterErrorHandler makes a logger the slog default, routes the standard
// library log package into it and offers Report and Recover helpers.
package logger
