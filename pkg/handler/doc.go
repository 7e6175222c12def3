// Package handler contains the record handlers of the logging runtime.
//
// Writers (Stream, RotatingFile, Socket, SyslogUDP, ErrorLog, Redis,
// Postgres, Queue, S3, Mail, Webhook, Sentry, GCP) embed
// [logger.Processing]: they have a minimum level, a bubble flag, their own
// processor stack and one formatter with a sensible default.
//
// Wrappers (Buffer, Deduplication, Filter, FingersCrossed, Sampling,
// Overflow) decorate another handler and forward formatter calls to it.
// Group, WhatFailureGroup and FallbackGroup fan records out to several
// handlers.
//
//	stream := handler.NewStream(os.Stdout, logger.LevelDebug, true)
//	fc := handler.NewFingersCrossed(stream, handler.NewErrorLevelActivation(logger.LevelError), true,
//	    handler.WithBufferSize(100),
//	)
//	log := logger.New("app", logger.WithHandlers(fc))
//
// Network clients are taken as narrow interfaces (RedisListClient,
// PostgresClient, Enqueuer, Uploader, MailSender, HTTPDoer) so handlers
// never own the connection pools they write to.
package handler
