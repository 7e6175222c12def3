package slogfactory_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c, err := slogfactory.New(slogfactory.Config{
		Loggers: map[string]slogfactory.Options{
			"app": {
				"name":          "app",
				"error_handler": false,
				"handlers": []any{
					slogfactory.Options{
						"type": "console",
						"options": slogfactory.Options{
							"stream":    &buf,
							"level":     "notice",
							"formatter": slogfactory.Options{"type": "line", "options": slogfactory.Options{"format": "%channel%.%level_name%: %message%\n"}},
						},
					},
				},
			},
		},
		Handlers: slogfactory.PluginConfig{Aliases: map[string]string{"console": "stream"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	log, err := c.Logger("app")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, log.Info(ctx, "skipped"))
	require.NoError(t, log.Error(ctx, "written"))
	assert.Equal(t, "app.ERROR: written\n", buf.String())
}

func TestNew_UnknownClientType(t *testing.T) {
	t.Parallel()

	_, err := slogfactory.New(slogfactory.Config{
		Clients: map[string]slogfactory.ClientConfig{"db": {Type: "mysql"}},
	})
	require.ErrorIs(t, err, slogfactory.ErrServiceNotFound)
}

func TestWithHandlerFactory(t *testing.T) {
	t.Parallel()

	custom := handler.NewTest(logger.LevelDebug, true)
	c, err := slogfactory.New(slogfactory.Config{
		Loggers: map[string]slogfactory.Options{
			"app": {
				"name":          "app",
				"error_handler": false,
				"handlers":      []any{slogfactory.Options{"type": "memory"}},
			},
		},
	}, slogfactory.WithHandlerFactory("memory", func(*slogfactory.Container, string, any) (logger.Handler, error) {
		return custom, nil
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	log, err := c.Logger("app")
	require.NoError(t, err)
	require.NoError(t, log.Warning(context.Background(), "custom"))
	assert.True(t, custom.HasRecord(logger.LevelWarning, "custom"))
}

func TestDefaultFactories(t *testing.T) {
	t.Parallel()

	assert.Contains(t, slogfactory.DefaultHandlerFactories(), "fingers_crossed")
	assert.Contains(t, slogfactory.DefaultFormatterFactories(), "json")
	assert.Contains(t, slogfactory.DefaultProcessorFactories(), "uid")
	assert.Contains(t, slogfactory.DefaultActivationStrategyFactories(), "channel_level")
	assert.Contains(t, slogfactory.DefaultClientFactories(), "redis")
}
