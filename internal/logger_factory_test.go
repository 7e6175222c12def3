package internal_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/internal"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

func newLogger(t *testing.T, opts internal.Options, containerOpts ...internal.Option) (*logger.Logger, error) {
	t.Helper()
	if _, ok := opts["error_handler"]; !ok {
		opts["error_handler"] = false
	}
	c, err := internal.New(internal.Config{
		Loggers: map[string]internal.Options{"app": opts},
	}, containerOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.Logger("app")
}

func TestLoggerFactory(t *testing.T) {
	t.Parallel()

	t.Run("builds configured and ready-made handlers", func(t *testing.T) {
		t.Parallel()
		ready := handler.NewTest(logger.LevelDebug, true)
		l, err := newLogger(t, internal.Options{
			"name":     "xyz",
			"timezone": "Europe/Berlin",
			"handlers": []any{
				internal.Options{"type": "test", "options": internal.Options{"level": "info"}},
				ready,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "xyz", l.Name())
		assert.Len(t, l.Handlers(), 2)
		assert.Equal(t, "Europe/Berlin", l.Timezone().String())

		require.NoError(t, l.Info(context.Background(), "hello"))
		assert.True(t, ready.HasRecord(logger.LevelInfo, "hello"))
	})

	t.Run("invalid timezone", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "timezone": "Not/AZone"})
		require.ErrorIs(t, err, internal.ErrInvalidTimezone)
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
		assert.Contains(t, err.Error(), "an invalid timezone was set")
	})

	t.Run("non-string timezone", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "timezone": 42})
		require.ErrorIs(t, err, internal.ErrInvalidTimezone)
	})

	t.Run("name is required", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"handlers": []any{}})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("handlers must be a sequence", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "handlers": "test"})
		require.ErrorIs(t, err, internal.ErrHandlersNotArray)
	})

	t.Run("malformed handler entry is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "handlers": []any{42}})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})

	t.Run("handler without type is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "handlers": []any{internal.Options{"options": internal.Options{}}}})
		require.ErrorIs(t, err, internal.ErrHandlerTypeMissing)
	})

	t.Run("unknown and disabled handlers are skipped", func(t *testing.T) {
		t.Parallel()
		l, err := newLogger(t, internal.Options{
			"name": "xyz",
			"handlers": []any{
				internal.Options{"type": "xyz"},
				internal.Options{"type": "test", "enabled": false},
				internal.Options{"type": "stream"},
				internal.Options{"type": "test"},
			},
		})
		require.NoError(t, err)
		require.Len(t, l.Handlers(), 1)
		assert.IsType(t, &handler.Test{}, l.Handlers()[0])
	})

	t.Run("handlers are pushed in order", func(t *testing.T) {
		t.Parallel()
		first := handler.NewTest(logger.LevelDebug, true)
		second := handler.NewTest(logger.LevelDebug, true)
		l, err := newLogger(t, internal.Options{"name": "xyz", "handlers": []any{first, second}})
		require.NoError(t, err)
		got := l.Handlers()
		require.Len(t, got, 2)
		assert.Same(t, second, got[0])
		assert.Same(t, first, got[1])
	})

	t.Run("zero handlers still logs", func(t *testing.T) {
		t.Parallel()
		l, err := newLogger(t, internal.Options{"name": "xyz"})
		require.NoError(t, err)
		assert.Empty(t, l.Handlers())
		require.NoError(t, l.Error(context.Background(), "dropped"))
	})
}

func TestLoggerFactory_Processors(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	track := func(name string) func(context.Context, logger.Record) logger.Record {
		return func(_ context.Context, rec logger.Record) logger.Record {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return rec
		}
	}

	h := handler.NewTest(logger.LevelDebug, true)
	l, err := newLogger(t, internal.Options{
		"name":     "xyz",
		"handlers": []any{h},
		"processors": []any{
			track("first"),
			internal.Options{"type": "tag", "options": internal.Options{"tags": []any{"a", "b"}}},
			internal.Options{"type": "uid", "enabled": false},
			internal.Options{"type": "xyz"},
			logger.ProcessorFunc(track("last")),
		},
	})
	require.NoError(t, err)
	assert.Len(t, l.Processors(), 3)

	require.NoError(t, l.Info(context.Background(), "hello"))
	assert.Equal(t, []string{"first", "last"}, order)

	recs := h.Records()
	require.Len(t, recs, 1)
	tags, ok := recs[0].ExtraAttr("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tags.Value.Any())
}

func TestLoggerFactory_ProcessorsMustBeSequence(t *testing.T) {
	t.Parallel()

	_, err := newLogger(t, internal.Options{"name": "xyz", "processors": internal.Options{"type": "uid"}})
	require.ErrorIs(t, err, internal.ErrProcessorsNotArray)
}

func TestLoggerFactory_InvalidProcessorOptionsAreSkipped(t *testing.T) {
	t.Parallel()

	t.Run("logger processors", func(t *testing.T) {
		t.Parallel()
		l, err := newLogger(t, internal.Options{
			"name": "xyz",
			"processors": []any{
				internal.Options{"type": "uid", "options": internal.Options{"length": 99}},
				internal.Options{"type": "load_average", "options": internal.Options{"avg_system_load": 3}},
				internal.Options{"type": "process_id"},
			},
		})
		require.NoError(t, err)
		assert.Len(t, l.Processors(), 1)
	})

	t.Run("handler processors", func(t *testing.T) {
		t.Parallel()
		l, err := newLogger(t, internal.Options{
			"name": "xyz",
			"handlers": []any{internal.Options{
				"type": "test",
				"options": internal.Options{
					"processors": []any{
						internal.Options{"type": "uid", "options": internal.Options{"length": 0}},
						internal.Options{"type": "process_id"},
					},
				},
			}},
		})
		require.NoError(t, err)
		h, ok := l.Handlers()[0].(*handler.Test)
		require.True(t, ok)
		assert.Len(t, h.Processors(), 1)
	})

	t.Run("missing type still fails", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{
			"name":       "xyz",
			"processors": []any{internal.Options{"options": internal.Options{}}},
		})
		require.ErrorIs(t, err, internal.ErrProcessorTypeMissing)
	})

	t.Run("malformed entry still fails", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{"name": "xyz", "processors": []any{"uid"}})
		require.ErrorIs(t, err, internal.ErrServiceNotCreated)
	})
}

func TestLoggerFactory_HandlerFormatterAndProcessors(t *testing.T) {
	t.Parallel()

	l, err := newLogger(t, internal.Options{
		"name": "xyz",
		"handlers": []any{internal.Options{
			"type": "test",
			"options": internal.Options{
				"formatter":  internal.Options{"type": "line", "options": internal.Options{"format": "%level_name%: %message%"}},
				"processors": []any{internal.Options{"type": "process_id"}},
			},
		}},
	})
	require.NoError(t, err)

	h, ok := l.Handlers()[0].(*handler.Test)
	require.True(t, ok)
	require.Len(t, h.Processors(), 1)

	require.NoError(t, l.Warning(context.Background(), "careful"))
	assert.Equal(t, []string{"WARNING: careful"}, h.Formatted())
	_, ok = h.Records()[0].ExtraAttr("process_id")
	assert.True(t, ok)
}

func TestLoggerFactory_FormatterErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		formatter any
		target    error
	}{
		{name: "not a map", formatter: "json", target: internal.ErrServiceNotCreated},
		{name: "missing type", formatter: internal.Options{}, target: internal.ErrFormatterTypeMissing},
		{name: "unknown type", formatter: internal.Options{"type": "xyz"}, target: internal.ErrServiceNotCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newLogger(t, internal.Options{
				"name": "xyz",
				"handlers": []any{internal.Options{
					"type":    "test",
					"options": internal.Options{"formatter": tt.formatter},
				}},
			})
			require.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("handler without formatter support", func(t *testing.T) {
		t.Parallel()
		_, err := newLogger(t, internal.Options{
			"name": "xyz",
			"handlers": []any{internal.Options{
				"type":    "slog",
				"options": internal.Options{"formatter": internal.Options{"type": "json"}},
			}},
		})
		require.ErrorIs(t, err, internal.ErrFormatterNotSupported)
	})

	t.Run("disabled formatter keeps the default", func(t *testing.T) {
		t.Parallel()
		l, err := newLogger(t, internal.Options{
			"name": "xyz",
			"handlers": []any{internal.Options{
				"type":    "slog",
				"options": internal.Options{"formatter": internal.Options{"type": "json", "enabled": false}},
			}},
		})
		require.NoError(t, err)
		assert.Len(t, l.Handlers(), 1)
	})
}

// Not parallel: the error handler replaces slog.Default.
func TestLoggerFactory_ErrorHandler(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := handler.NewTest(logger.LevelDebug, true)
	c, err := internal.New(internal.Config{
		Loggers: map[string]internal.Options{
			"app": {
				"name":          "app",
				"handlers":      []any{h},
				"error_handler": internal.Options{"error_level": "critical"},
			},
			"quiet": {"name": "quiet", "error_handler": false},
		},
	})
	require.NoError(t, err)

	_, ok := c.ErrorHandler("app")
	assert.False(t, ok, "error handler is registered on build")

	_, err = c.Logger("app")
	require.NoError(t, err)
	eh, ok := c.ErrorHandler("app")
	require.True(t, ok)
	assert.Equal(t, logger.LevelCritical, eh.Config().ErrorLevel)
	assert.Equal(t, logger.LevelWarning, eh.Config().StdLogLevel)

	slog.Info("through default")
	assert.True(t, h.HasRecord(logger.LevelInfo, "through default"))

	_, err = c.Logger("quiet")
	require.NoError(t, err)
	_, ok = c.ErrorHandler("quiet")
	assert.False(t, ok)

	require.NoError(t, c.Close())
}
