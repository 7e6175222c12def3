// Package formatter provides the record formatters used by handlers:
// JSON, line, normalizer, scalar, HTML, Markdown and the wire formats of
// common log collectors (Logstash, GELF, Google Cloud Logging, Fluentd,
// Loggly, Logmatic, syslog).
//
// Every formatter implements logger.Formatter and is safe for concurrent use.
//
//	f := formatter.NewLine(formatter.WithFormat("%level_name%: %message%\n"))
//	h := handler.NewStream(os.Stdout, logger.LevelInfo, true)
//	h.SetFormatter(f)
package formatter
