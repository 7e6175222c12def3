package internal_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/internal"
	"github.com/dmitrymomot/slogfactory/pkg/cache"
	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

func newContainer(t *testing.T, cfg internal.Config, opts ...internal.Option) *internal.Container {
	t.Helper()
	c, err := internal.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func buildHandler(t *testing.T, c *internal.Container, typ string, options any) (logger.Handler, error) {
	t.Helper()
	h, err := c.HandlerManager().Get(typ, options)
	if err == nil {
		t.Cleanup(func() { _ = h.Close() })
	}
	return h, err
}

func TestHandlerFactories_OptionErrors(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})

	tests := []struct {
		name    string
		typ     string
		options any
		target  error
		message string
	}{
		{name: "stream without options", typ: "stream", options: nil, target: internal.ErrOptionsNotArray},
		{name: "stream with scalar options", typ: "stream", options: "stdout", target: internal.ErrOptionsNotArray},
		{name: "stream without stream", typ: "stream", options: internal.Options{}, message: "stream is required"},
		{name: "rotating file without filename", typ: "rotating_file", options: internal.Options{}, message: "filename is required"},
		{name: "socket without connection string", typ: "socket", options: internal.Options{}, message: "connection_string is required"},
		{name: "syslog udp without host", typ: "syslog_udp", options: internal.Options{}, message: "host is required"},
		{name: "buffer without handler", typ: "buffer", options: internal.Options{}, message: "handler is required"},
		{name: "sampling without factor", typ: "sampling", options: internal.Options{"handler": internal.Options{"type": "test"}}, message: "factor is required"},
		{name: "sampling with zero factor", typ: "sampling", options: internal.Options{"handler": internal.Options{"type": "test"}, "factor": 0}, target: handler.ErrInvalidFactor},
		{name: "group without handlers", typ: "group", options: internal.Options{}, message: "handlers is required"},
		{name: "group with scalar handlers", typ: "group", options: internal.Options{"handlers": "test"}, target: internal.ErrHandlersNotArray},
		{name: "redis without key", typ: "redis", options: internal.Options{"client": "cache"}, message: "key is required"},
		{name: "mail without recipients", typ: "mail", options: internal.Options{"subject": "x"}, message: "to is required"},
		{name: "webhook without url", typ: "webhook", options: internal.Options{}, message: "url is required"},
		{name: "sentry without dsn or client", typ: "sentry", options: internal.Options{}, message: "dsn is required"},
		{name: "invalid level", typ: "test", options: internal.Options{"level": "loud"}, target: logger.ErrInvalidLevel},
		{name: "invalid bubble", typ: "test", options: internal.Options{"bubble": "maybe"}, message: "invalid bubble"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := buildHandler(t, c, tt.typ, tt.options)
			require.ErrorIs(t, err, internal.ErrServiceNotCreated)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}

	t.Run("unknown client service", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "redis", internal.Options{"client": "cache", "key": "logs"})
		require.ErrorIs(t, err, internal.ErrServiceNotFound)
	})
}

func TestHandlerFactories_Defaults(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})

	t.Run("noop accepts nil options", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "noop", nil)
		require.NoError(t, err)
	})

	t.Run("test handler defaults", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "test", nil)
		require.NoError(t, err)
		th := h.(*handler.Test)
		assert.Equal(t, logger.LevelDebug, th.Level())
		assert.True(t, th.Bubble())
	})

	t.Run("stream to stdout", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "stream", internal.Options{"stream": "stdout", "level": "warning", "bubble": "false"})
		require.NoError(t, err)
		s := h.(*handler.Stream)
		assert.Same(t, os.Stdout, s.Stream())
		assert.Equal(t, logger.LevelWarning, s.Level())
		assert.False(t, s.Bubble())
		assert.Equal(t, handler.DefaultFilePermission, s.FilePermission())
		assert.False(t, s.UseLocking())
	})

	t.Run("stream to a writer", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		h, err := buildHandler(t, c, "stream", internal.Options{
			"stream":    &buf,
			"formatter": internal.Options{"type": "line"},
		})
		require.NoError(t, err)
		_, err = h.Handle(context.Background(), logger.NewRecord(time.Now(), "app", logger.LevelInfo, "hello"))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "app.INFO: hello")
	})

	t.Run("stream to a file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "app.log")
		h, err := buildHandler(t, c, "stream", internal.Options{
			"stream":          path,
			"file_permission": "0600",
			"use_locking":     true,
		})
		require.NoError(t, err)
		s := h.(*handler.Stream)
		assert.Equal(t, path, s.URL())
		assert.Equal(t, os.FileMode(0o600), s.FilePermission())
		assert.True(t, s.UseLocking())

		_, err = h.Handle(context.Background(), logger.NewRecord(time.Now(), "app", logger.LevelError, "to disk"))
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to disk")
	})

	t.Run("rotating file", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "rotating_file", internal.Options{
			"filename":        filepath.Join(t.TempDir(), "app.log"),
			"max_files":       3,
			"rotate_schedule": "@daily",
		})
		require.NoError(t, err)
		assert.IsType(t, &handler.RotatingFile{}, h)
	})

	t.Run("socket", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "socket", internal.Options{
			"connection_string": "udp://127.0.0.1:5140",
			"timeout":           2,
			"persistent":        false,
		})
		require.NoError(t, err)
		s := h.(*handler.Socket)
		assert.Equal(t, 2*time.Second, s.Timeout())
		assert.False(t, s.IsPersistent())
	})

	t.Run("syslog udp", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "syslog_udp", internal.Options{"host": "127.0.0.1", "facility": "local0", "rfc": 3164})
		require.NoError(t, err)
		s := h.(*handler.SyslogUDP)
		assert.Equal(t, handler.DefaultSyslogPort, s.Config().Port)
		assert.Equal(t, handler.RFC3164, s.Config().RFC)
		assert.Equal(t, "go", s.Config().Ident)
	})

	t.Run("buffer", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "buffer", internal.Options{
			"handler":           internal.Options{"type": "test"},
			"buffer_limit":      "5",
			"flush_on_overflow": true,
		})
		require.NoError(t, err)
		b := h.(*handler.Buffer)
		assert.Equal(t, 5, b.BufferLimit())
		assert.True(t, b.FlushOnOverflow())
		assert.IsType(t, &handler.Test{}, b.Handler())
	})

	t.Run("deduplication uses memory by default", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "deduplication", internal.Options{
			"handler": internal.Options{"type": "test"},
			"time":    "5m",
		})
		require.NoError(t, err)
		d := h.(*handler.Deduplication)
		assert.Equal(t, logger.LevelError, d.DeduplicationLevel())
		assert.Equal(t, 5*time.Minute, d.Time())
		assert.IsType(t, &cache.Memory{}, d.Store())
	})

	t.Run("filter with a range", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "filter", internal.Options{
			"handler":           internal.Options{"type": "test"},
			"min_level_or_list": "notice",
			"max_level":         "error",
		})
		require.NoError(t, err)
		f := h.(*handler.Filter)
		assert.Equal(t, []slog.Level{logger.LevelNotice, logger.LevelWarning, logger.LevelError}, f.AcceptedLevels())
	})

	t.Run("filter with a list", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "filter", internal.Options{
			"handler":           internal.Options{"type": "test"},
			"min_level_or_list": []any{"debug", "critical"},
		})
		require.NoError(t, err)
		f := h.(*handler.Filter)
		assert.Equal(t, []slog.Level{logger.LevelDebug, logger.LevelCritical}, f.AcceptedLevels())
	})

	t.Run("overflow thresholds", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "overflow", internal.Options{
			"handler":       internal.Options{"type": "test"},
			"threshold_map": internal.Options{"warning": 10, "error": "2"},
		})
		require.NoError(t, err)
		o := h.(*handler.Overflow)
		assert.Equal(t, map[slog.Level]int{logger.LevelWarning: 10, logger.LevelError: 2}, o.Thresholds())
	})

	t.Run("sampling", func(t *testing.T) {
		t.Parallel()
		h, err := buildHandler(t, c, "sampling", internal.Options{
			"handler": internal.Options{"type": "test"},
			"factor":  4,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, h.(*handler.Sampling).Factor())
	})

	t.Run("disabled child handler", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "buffer", internal.Options{
			"handler": internal.Options{"type": "test", "enabled": false},
		})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})

	t.Run("unknown child handler", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "buffer", internal.Options{
			"handler": internal.Options{"type": "xyz"},
		})
		require.ErrorIs(t, err, internal.ErrServiceNotFound)
	})
}

func TestHandlerFactories_Groups(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})

	for _, typ := range []string{"group", "whatfailuregroup", "fallbackgroup"} {
		t.Run(typ+" keeps declaration order", func(t *testing.T) {
			t.Parallel()
			ready := handler.NewTest(logger.LevelDebug, true)
			h, err := buildHandler(t, c, typ, internal.Options{
				"handlers": []any{
					internal.Options{"type": "null"},
					internal.Options{"type": "test", "enabled": false},
					internal.Options{"type": "xyz"},
					ready,
					internal.Options{"type": "test"},
				},
			})
			require.NoError(t, err)

			var members []logger.Handler
			switch g := h.(type) {
			case *handler.Group:
				members = g.Handlers()
			case *handler.WhatFailureGroup:
				members = g.Handlers()
			case *handler.FallbackGroup:
				members = g.Handlers()
			default:
				t.Fatalf("unexpected type %T", h)
			}
			require.Len(t, members, 3)
			assert.IsType(t, &handler.Null{}, members[0])
			assert.Same(t, ready, members[1])
			assert.IsType(t, &handler.Test{}, members[2])
		})

		t.Run(typ+" needs an active handler", func(t *testing.T) {
			t.Parallel()
			_, err := buildHandler(t, c, typ, internal.Options{
				"handlers": []any{
					internal.Options{"type": "test", "enabled": false},
					internal.Options{"type": "xyz"},
				},
			})
			require.ErrorIs(t, err, internal.ErrNoActiveHandlers)
			assert.Contains(t, err.Error(), "no active handlers specified")
		})
	}

	t.Run("non-map entry is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "group", internal.Options{"handlers": []any{"test"}})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})
}

type countingHandler struct {
	*handler.Test
	closed *atomic.Int32
}

func (h countingHandler) Close() error {
	h.closed.Add(1)
	return h.Test.Close()
}

func TestHandlerFactories_GroupClosesBuiltMembers(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*internal.Container, *atomic.Int32, *atomic.Int32) {
		t.Helper()
		var built, closed atomic.Int32
		c := newContainer(t, internal.Config{}, internal.WithHandlerFactory("counting",
			func(*internal.Container, string, any) (logger.Handler, error) {
				built.Add(1)
				return countingHandler{Test: handler.NewTest(logger.LevelDebug, true), closed: &closed}, nil
			}))
		return c, &built, &closed
	}

	for _, typ := range []string{"group", "whatfailuregroup", "fallbackgroup"} {
		t.Run(typ+" later member fails", func(t *testing.T) {
			t.Parallel()
			c, built, closed := setup(t)
			_, err := buildHandler(t, c, typ, internal.Options{
				"handlers": []any{
					internal.Options{"type": "counting"},
					internal.Options{"type": "counting"},
					internal.Options{"type": "test", "options": internal.Options{"formatter": "bogus"}},
				},
			})
			require.ErrorIs(t, err, internal.ErrServiceNotCreated)
			assert.Equal(t, int32(2), built.Load())
			assert.Equal(t, int32(2), closed.Load())
		})

		t.Run(typ+" invalid bubble builds nothing", func(t *testing.T) {
			t.Parallel()
			c, built, _ := setup(t)
			_, err := buildHandler(t, c, typ, internal.Options{
				"bubble":   "sometimes",
				"handlers": []any{internal.Options{"type": "counting"}},
			})
			require.ErrorIs(t, err, internal.ErrServiceNotCreated)
			assert.Zero(t, built.Load())
		})
	}

	t.Run("ready-made members stay open", func(t *testing.T) {
		t.Parallel()
		c, _, _ := setup(t)
		var closed atomic.Int32
		ready := countingHandler{Test: handler.NewTest(logger.LevelDebug, true), closed: &closed}
		_, err := buildHandler(t, c, "group", internal.Options{
			"handlers": []any{
				ready,
				internal.Options{"type": "test", "options": internal.Options{"formatter": "bogus"}},
			},
		})
		require.Error(t, err)
		assert.Zero(t, closed.Load())
	})
}

func TestHandlerFactories_FingersCrossed(t *testing.T) {
	t.Parallel()

	strategy := handler.NewErrorLevelActivation(logger.LevelCritical)
	c := newContainer(t, internal.Config{}, internal.WithService("on_critical", strategy))

	tests := []struct {
		name     string
		strategy any
		check    func(t *testing.T, s handler.ActivationStrategy)
	}{
		{
			name:     "default is warning",
			strategy: nil,
			check: func(t *testing.T, s handler.ActivationStrategy) {
				el, ok := s.(*handler.ErrorLevelActivation)
				require.True(t, ok)
				assert.Equal(t, logger.LevelWarning, el.ActionLevel())
			},
		},
		{
			name:     "level name",
			strategy: "error",
			check: func(t *testing.T, s handler.ActivationStrategy) {
				assert.Equal(t, logger.LevelError, s.(*handler.ErrorLevelActivation).ActionLevel())
			},
		},
		{
			name:     "service name",
			strategy: "on_critical",
			check: func(t *testing.T, s handler.ActivationStrategy) {
				assert.Same(t, strategy, s)
			},
		},
		{
			name: "config map",
			strategy: internal.Options{
				"type": "channel_level",
				"options": internal.Options{
					"default_action_level":    "error",
					"channel_to_action_level": internal.Options{"billing": "info"},
				},
			},
			check: func(t *testing.T, s handler.ActivationStrategy) {
				cl, ok := s.(*handler.ChannelLevelActivation)
				require.True(t, ok)
				assert.Equal(t, logger.LevelError, cl.DefaultActionLevel())
				assert.Equal(t, map[string]slog.Level{"billing": logger.LevelInfo}, cl.ChannelActionLevels())
			},
		},
		{
			name:     "instance",
			strategy: strategy,
			check: func(t *testing.T, s handler.ActivationStrategy) {
				assert.Same(t, strategy, s)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, err := buildHandler(t, c, "fingers_crossed", internal.Options{
				"handler":             internal.Options{"type": "test"},
				"activation_strategy": tt.strategy,
				"buffer_size":         10,
				"stop_buffering":      false,
				"passthru_level":      "notice",
			})
			require.NoError(t, err)
			fc := h.(*handler.FingersCrossed)
			assert.Equal(t, 10, fc.BufferSize())
			assert.False(t, fc.StopBuffering())
			level, ok := fc.PassthruLevel()
			require.True(t, ok)
			assert.Equal(t, logger.LevelNotice, level)
			tt.check(t, fc.ActivationStrategy())
		})
	}

	t.Run("strategy without type", func(t *testing.T) {
		t.Parallel()
		_, err := buildHandler(t, c, "fingers_crossed", internal.Options{
			"handler":             internal.Options{"type": "test"},
			"activation_strategy": internal.Options{},
		})
		require.ErrorIs(t, err, internal.ErrStrategyTypeMissing)
	})
}

type recordedRequest struct {
	header http.Header
	body   []byte
}

func TestHandlerFactories_Webhook(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := newContainer(t, internal.Config{
		Clients: map[string]internal.ClientConfig{
			"api": {Type: "http", Options: internal.Options{"timeout": "3s"}},
		},
	})

	h, err := buildHandler(t, c, "webhook", internal.Options{
		"url":     srv.URL,
		"client":  "api",
		"headers": internal.Options{"X-Token": "secret"},
	})
	require.NoError(t, err)

	_, err = h.Handle(context.Background(), logger.NewRecord(time.Now(), "app", logger.LevelError, "boom"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reqs, 1)
	assert.Equal(t, "secret", reqs[0].header.Get("X-Token"))
	assert.Contains(t, string(reqs[0].body), `"message":"boom"`)

	client, err := c.Get("api")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, client.(*http.Client).Timeout)
}

func TestHandlerFactories_Slog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	target := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: logger.LevelDebug}))
	c := newContainer(t, internal.Config{}, internal.WithService("std", target))

	h, err := buildHandler(t, c, "slog", internal.Options{"logger": "std", "level": "info"})
	require.NoError(t, err)
	s := h.(*handler.Slog)
	assert.Equal(t, target.Handler(), s.Target())

	_, err = h.Handle(context.Background(), logger.NewRecord(time.Now(), "app", logger.LevelError, "forwarded"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "forwarded")

	_, err = buildHandler(t, c, "slog", internal.Options{"logger": "missing"})
	require.ErrorIs(t, err, internal.ErrServiceNotFound)
}

func TestHandlerFactories_FormatterDefaults(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})

	f, err := c.FormatterManager().Get("json", nil)
	require.NoError(t, err)
	j := f.(*formatter.JSON)
	assert.Equal(t, formatter.BatchModeJSON, j.BatchMode())
	assert.True(t, j.AppendsNewline())
	assert.False(t, j.IgnoresEmptyContextAndExtra())
	assert.Equal(t, formatter.SimpleDate, j.DateFormat())

	f, err = c.FormatterManager().Get("json", internal.Options{
		"batch_mode":                     "newlines",
		"append_newline":                 false,
		"ignore_empty_context_and_extra": true,
		"date_format":                    time.RFC3339,
	})
	require.NoError(t, err)
	j = f.(*formatter.JSON)
	assert.Equal(t, formatter.BatchModeNewlines, j.BatchMode())
	assert.False(t, j.AppendsNewline())
	assert.True(t, j.IgnoresEmptyContextAndExtra())
	assert.Equal(t, time.RFC3339, j.DateFormat())

	_, err = c.FormatterManager().Get("json", internal.Options{"batch_mode": "xml"})
	require.ErrorIs(t, err, internal.ErrServiceNotCreated)

	_, err = c.FormatterManager().Get("logstash", internal.Options{})
	require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	assert.Contains(t, err.Error(), "application_name is required")

	_, err = c.FormatterManager().Get("logstash", nil)
	require.ErrorIs(t, err, internal.ErrOptionsNotArray)

	f, err = c.FormatterManager().Get("line", internal.Options{"allow_inline_line_breaks": true})
	require.NoError(t, err)
	l := f.(*formatter.Line)
	assert.Equal(t, formatter.DefaultLineFormat, l.Template())
	assert.True(t, l.AllowsInlineLineBreaks())
}

func TestProcessorFactories(t *testing.T) {
	t.Parallel()

	c := newContainer(t, internal.Config{})
	pm := c.ProcessorManager()

	for _, name := range pm.Names() {
		if name == "context" {
			continue
		}
		t.Run(name+" accepts nil options", func(t *testing.T) {
			t.Parallel()
			p, err := pm.Get(name, nil)
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}

	t.Run("uid length is validated", func(t *testing.T) {
		t.Parallel()
		_, err := pm.Get("uid", internal.Options{"length": 33})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})

	t.Run("load average window is validated", func(t *testing.T) {
		t.Parallel()
		_, err := pm.Get("load_average", internal.Options{"avg_system_load": 3})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})

	t.Run("tag map", func(t *testing.T) {
		t.Parallel()
		p, err := pm.Get("tag", internal.Options{"tags": internal.Options{"env": "prod", "app": "api"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"app:api", "env:prod"}, p.(interface{ Tags() []string }).Tags())
	})

	t.Run("context extractors", func(t *testing.T) {
		t.Parallel()
		extract := func(context.Context) (slog.Attr, bool) { return slog.String("tenant", "acme"), true }
		p, err := pm.Get("context", internal.Options{"extractors": []any{extract}})
		require.NoError(t, err)
		rec := p.Process(context.Background(), logger.NewRecord(time.Now(), "app", logger.LevelInfo, "x"))
		_, ok := rec.ExtraAttr("tenant")
		assert.True(t, ok)

		_, err = pm.Get("context", internal.Options{"extractors": []any{"tenant"}})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})
}
