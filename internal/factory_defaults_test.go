package internal_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/internal"
	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/job"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
	"github.com/dmitrymomot/slogfactory/pkg/processor"
)

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(context.Context, river.JobArgs, ...job.EnqueueOption) error {
	return nil
}

func (nopEnqueuer) EnqueueMany(context.Context, []river.JobArgs, ...job.EnqueueOption) error {
	return nil
}

type levelled interface {
	Level() slog.Level
	Bubble() bool
}

func TestHandlerFactories_ServiceDefaults(t *testing.T) {
	t.Parallel()

	redisClient := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = redisClient.Close() })

	c := newContainer(t, internal.Config{}, internal.WithService("jobs", nopEnqueuer{}))

	tests := []struct {
		name    string
		typ     string
		options any
		check   func(t *testing.T, h logger.Handler)
	}{
		{
			name:    "error_log",
			typ:     "error_log",
			options: nil,
			check: func(t *testing.T, h logger.Handler) {
				el, ok := h.(*handler.ErrorLog)
				require.True(t, ok)
				assert.False(t, el.ExpandNewlines())
			},
		},
		{
			name:    "queue",
			typ:     "queue",
			options: internal.Options{"client": "jobs"},
			check: func(t *testing.T, h logger.Handler) {
				q, ok := h.(*handler.Queue)
				require.True(t, ok)
				assert.Equal(t, handler.DefaultQueueConfig(), q.Config())
				assert.Equal(t, handler.QueueConfig{Queue: "logs", MaxAttempts: 3, Priority: 1}, q.Config())
			},
		},
		{
			name:    "gcp",
			typ:     "gcp",
			options: internal.Options{"stream": &bytes.Buffer{}},
			check: func(t *testing.T, h logger.Handler) {
				g, ok := h.(*handler.GCP)
				require.True(t, ok)
				assert.Equal(t, handler.GCPConfig{}, g.Config())
			},
		},
		{
			name:    "slack_webhook",
			typ:     "slack_webhook",
			options: internal.Options{"url": "https://hooks.slack.test/T000"},
			check: func(t *testing.T, h logger.Handler) {
				s, ok := h.(*handler.SlackWebhook)
				require.True(t, ok)
				assert.Equal(t, handler.SlackConfig{}, s.Slack())
				assert.Equal(t, "https://hooks.slack.test/T000", s.Config().URL)
				assert.NotNil(t, s.Formatter())
			},
		},
		{
			name:    "redis_pubsub",
			typ:     "redis_pubsub",
			options: internal.Options{"client": redisClient, "key": "logs"},
			check: func(t *testing.T, h logger.Handler) {
				r, ok := h.(*handler.RedisPubSub)
				require.True(t, ok)
				assert.Equal(t, "logs", r.Key())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, err := buildHandler(t, c, tt.typ, tt.options)
			require.NoError(t, err)

			lv, ok := h.(levelled)
			require.True(t, ok)
			assert.Equal(t, logger.LevelDebug, lv.Level())
			assert.True(t, lv.Bubble())
			tt.check(t, h)
		})
	}
}

func TestFormatterFactories_Defaults(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})
	host, err := os.Hostname()
	require.NoError(t, err)

	tests := []struct {
		typ   string
		check func(t *testing.T, f logger.Formatter)
	}{
		{typ: "gelf", check: func(t *testing.T, f logger.Formatter) {
			g, ok := f.(*formatter.GELF)
			require.True(t, ok)
			assert.Equal(t, host, g.SystemName())
			assert.Equal(t, "ctxt_", g.ContextPrefix())
			assert.Empty(t, g.ExtraPrefix())
			assert.Equal(t, formatter.DefaultGELFMaxLength, g.MaxLength())
		}},
		{typ: "html", check: func(t *testing.T, f logger.Formatter) {
			h, ok := f.(*formatter.HTML)
			require.True(t, ok)
			assert.Equal(t, formatter.SimpleDate, h.DateFormat())
			assert.False(t, h.AllowsHTML())
		}},
		{typ: "markdown", check: func(t *testing.T, f logger.Formatter) {
			m, ok := f.(*formatter.Markdown)
			require.True(t, ok)
			assert.Equal(t, formatter.SimpleDate, m.DateFormat())
		}},
		{typ: "normalizer", check: func(t *testing.T, f logger.Formatter) {
			n, ok := f.(*formatter.Normalizer)
			require.True(t, ok)
			assert.Equal(t, formatter.SimpleDate, n.DateFormat())
			assert.Equal(t, formatter.DefaultMaxNormalizeDepth, n.MaxNormalizeDepth())
			assert.Equal(t, formatter.DefaultMaxNormalizeItemCount, n.MaxNormalizeItems())
		}},
		{typ: "scalar", check: func(t *testing.T, f logger.Formatter) {
			s, ok := f.(*formatter.Scalar)
			require.True(t, ok)
			assert.Equal(t, formatter.SimpleDate, s.DateFormat())
		}},
		{typ: "loggly", check: func(t *testing.T, f logger.Formatter) {
			l, ok := f.(*formatter.Loggly)
			require.True(t, ok)
			assert.Equal(t, formatter.BatchModeNewlines, l.BatchMode())
		}},
		{typ: "logmatic", check: func(t *testing.T, f logger.Formatter) {
			l, ok := f.(*formatter.Logmatic)
			require.True(t, ok)
			assert.Equal(t, host, l.Hostname())
			assert.Empty(t, l.AppName())
		}},
		{typ: "fluentd", check: func(t *testing.T, f logger.Formatter) {
			fl, ok := f.(*formatter.Fluentd)
			require.True(t, ok)
			assert.False(t, fl.LevelTag())
		}},
		{typ: "syslog", check: func(t *testing.T, f logger.Formatter) {
			s, ok := f.(*formatter.Syslog)
			require.True(t, ok)
			assert.Equal(t, "-", s.ApplicationName())
		}},
		{typ: "google_cloud_logging", check: func(t *testing.T, f logger.Formatter) {
			g, ok := f.(*formatter.GoogleCloudLogging)
			require.True(t, ok)
			assert.Equal(t, time.RFC3339Nano, g.DateFormat())
		}},
	}

	for _, tt := range tests {
		for _, options := range []any{nil, internal.Options{}} {
			name := tt.typ + "/nil"
			if options != nil {
				name = tt.typ + "/empty"
			}
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				f, err := c.FormatterManager().Get(tt.typ, options)
				require.NoError(t, err)
				tt.check(t, f)
			})
		}
	}
}

func TestProcessorFactories_Defaults(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})
	host, err := os.Hostname()
	require.NoError(t, err)
	ctx := context.Background()

	record := func(msg string, attrs ...slog.Attr) logger.Record {
		return logger.Record{
			Time:    time.Now(),
			Channel: "app",
			Level:   logger.LevelInfo,
			Message: msg,
			Attrs:   attrs,
		}
	}

	tests := []struct {
		typ   string
		check func(t *testing.T, p logger.Processor)
	}{
		{typ: "hostname", check: func(t *testing.T, p logger.Processor) {
			rec := p.Process(ctx, record("x"))
			a, ok := rec.ExtraAttr("hostname")
			require.True(t, ok)
			assert.Equal(t, host, a.Value.String())
		}},
		{typ: "memory_usage", check: func(t *testing.T, p logger.Processor) {
			rec := p.Process(ctx, record("x"))
			a, ok := rec.ExtraAttr("memory_usage")
			require.True(t, ok)
			assert.Equal(t, slog.KindString, a.Value.Kind())
			assert.True(t, strings.HasSuffix(a.Value.String(), "B"))
		}},
		{typ: "placeholder", check: func(t *testing.T, p logger.Processor) {
			at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
			rec := p.Process(ctx, record("{user} at {at}", slog.String("user", "bob"), slog.Time("at", at)))
			assert.Equal(t, "bob at "+at.Format(processor.DefaultPlaceholderDate), rec.Message)
			assert.Len(t, rec.Attrs, 2)
		}},
		{typ: "introspection", check: func(t *testing.T, p logger.Processor) {
			rec := p.Process(ctx, record("x"))
			fn, ok := rec.ExtraAttr("function")
			require.True(t, ok)
			assert.Contains(t, fn.Value.String(), "TestProcessorFactories_Defaults")
			_, ok = rec.ExtraAttr("line")
			assert.True(t, ok)
		}},
		{typ: "git", check: func(t *testing.T, p logger.Processor) {
			assert.IsType(t, &processor.Git{}, p)
		}},
		{typ: "trace", check: func(t *testing.T, p logger.Processor) {
			rec := p.Process(ctx, record("x"))
			_, ok := rec.ExtraAttr("trace_id")
			assert.False(t, ok)
		}},
	}

	for _, tt := range tests {
		for _, options := range []any{nil, internal.Options{}} {
			name := tt.typ + "/nil"
			if options != nil {
				name = tt.typ + "/empty"
			}
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				p, err := c.ProcessorManager().Get(tt.typ, options)
				require.NoError(t, err)
				tt.check(t, p)
			})
		}
	}
}
