package internal

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/slogfactory/pkg/db"
	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// service resolves a dependency option: either an instance of T or the
// name of a container service holding one.
func service[T any](c *Container, opts Options, key string) (T, error) {
	var zero T
	v, err := requireKey(opts, key)
	if err != nil {
		return zero, err
	}
	if s, ok := v.(T); ok {
		return s, nil
	}
	name, ok := v.(string)
	if !ok || name == "" {
		return zero, notCreatedf("%s must be a service name, got %T", key, v)
	}
	svc, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	s, ok := svc.(T)
	if !ok {
		return zero, notCreatedf("service %q (%T) cannot be used as %s", name, svc, key)
	}
	return s, nil
}

func redisClient(c *Container, opts Options) (goredis.UniversalClient, error) {
	return service[goredis.UniversalClient](c, opts, "client")
}

func redisHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	key, err := requireString(opts, "key")
	if err != nil {
		return nil, err
	}
	capSize, err := intOpt(opts, "cap_size", 0)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.RedisListClient](c, opts, "client")
	if err != nil {
		return nil, err
	}
	return handler.NewRedis(client, key, capSize, level, bubble), nil
}

func redisPubSubHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	key, err := requireString(opts, "key")
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.RedisPublisher](c, opts, "client")
	if err != nil {
		return nil, err
	}
	return handler.NewRedisPubSub(client, key, level, bubble), nil
}

// postgresHandlerFactory optionally creates the default log table.
// Custom tables are expected to exist.
func postgresHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	table, err := stringOpt(opts, "table", db.DefaultTable)
	if err != nil {
		return nil, err
	}
	migrate, err := boolOpt(opts, "migrate", false)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.PostgresClient](c, opts, "client")
	if err != nil {
		return nil, err
	}

	if migrate {
		pool, ok := client.(*pgxpool.Pool)
		if !ok {
			return nil, notCreatedf("migrate needs a postgres pool, got %T", client)
		}
		if table != db.DefaultTable {
			return nil, notCreatedf("migrate only creates the %q table", db.DefaultTable)
		}
		if err := db.Migrate(c.ctx, pool, c.log); err != nil {
			return nil, notCreated(err)
		}
	}
	return handler.NewPostgres(client, table, level, bubble), nil
}

func queueHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	cfg := handler.DefaultQueueConfig()
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.Enqueuer](c, opts, "client")
	if err != nil {
		return nil, err
	}
	return handler.NewQueue(client, cfg, level, bubble), nil
}

func s3HandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	prefix, err := stringOpt(opts, "prefix", handler.DefaultS3Prefix)
	if err != nil {
		return nil, err
	}
	limit, err := intOpt(opts, "buffer_limit", handler.DefaultS3BufferLimit)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.Uploader](c, opts, "client")
	if err != nil {
		return nil, err
	}
	return handler.NewS3(client, prefix, limit, level, bubble), nil
}

func mailHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	if _, err := requireKey(opts, "to"); err != nil {
		return nil, err
	}
	if _, err := requireString(opts, "subject"); err != nil {
		return nil, err
	}
	cfg := handler.MailConfig{ContentType: handler.ContentTypeHTML}
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := service[handler.MailSender](c, opts, "client")
	if err != nil {
		return nil, err
	}
	h, err := handler.NewMail(client, cfg, level, bubble)
	if err != nil {
		return nil, notCreated(err)
	}
	return h, nil
}

// sentryHandlerFactory uses the hub of a sentry service, or builds a
// private hub from dsn.
func sentryHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	eventLevel, err := levelOpt(opts, "event_level", logger.LevelError)
	if err != nil {
		return nil, err
	}

	var hub *sentry.Hub
	if _, ok := opts["client"]; ok {
		if hub, err = service[*sentry.Hub](c, opts, "client"); err != nil {
			return nil, err
		}
	} else {
		dsn, err := requireString(opts, "dsn")
		if err != nil {
			return nil, err
		}
		env, err := stringOpt(opts, "environment", "")
		if err != nil {
			return nil, err
		}
		client, err := sentry.NewClient(sentry.ClientOptions{Dsn: dsn, Environment: env})
		if err != nil {
			return nil, notCreated(err)
		}
		hub = sentry.NewHub(client, sentry.NewScope())
	}
	return handler.NewSentry(hub, level, eventLevel, bubble), nil
}

func outputStream(opts Options) (io.Writer, error) {
	v, ok := opts["stream"]
	if !ok || v == nil {
		return os.Stdout, nil
	}
	switch s := v.(type) {
	case io.Writer:
		return s, nil
	case string:
		switch s {
		case "", "stdout":
			return os.Stdout, nil
		case "stderr":
			return os.Stderr, nil
		}
	}
	return nil, notCreatedf("stream must be stdout, stderr or a writer")
}

func gcpHandlerFactory(_ *Container, _ string, options any) (logger.Handler, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	w, err := outputStream(opts)
	if err != nil {
		return nil, err
	}
	var cfg handler.GCPConfig
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	h, err := handler.NewGCP(w, cfg, level, bubble)
	if err != nil {
		return nil, notCreated(err)
	}
	return h, nil
}

// slogHandlerFactory forwards records to a *slog.Logger or slog.Handler
// service. Without one, records go to stdout as JSON.
func slogHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}

	var target slog.Handler
	if v, ok := opts["logger"]; ok && v != nil {
		svc := v
		if name, isName := v.(string); isName {
			if svc, err = c.Get(name); err != nil {
				return nil, err
			}
		}
		switch t := svc.(type) {
		case *slog.Logger:
			target = t.Handler()
		case slog.Handler:
			target = t
		default:
			return nil, notCreatedf("logger must be a *slog.Logger or slog.Handler, got %T", svc)
		}
	} else {
		target = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logger.LevelDebug,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && a.Key == slog.LevelKey {
					if lvl, ok := a.Value.Any().(slog.Level); ok {
						return slog.String(slog.LevelKey, logger.LevelName(lvl))
					}
				}
				return a
			},
		})
	}
	return handler.NewSlog(target, level, bubble), nil
}

type oauth2Options struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// oauth2Client wraps base with a client credentials token source.
func oauth2Client(ctx context.Context, raw any, base *http.Client) (*http.Client, error) {
	opts, err := toOptions(raw)
	if err != nil {
		return nil, notCreatedf("oauth2 must be a map")
	}
	var o oauth2Options
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	if o.ClientID == "" {
		return nil, requiredError("oauth2.client_id")
	}
	if o.TokenURL == "" {
		return nil, requiredError("oauth2.token_url")
	}
	cc := clientcredentials.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		TokenURL:     o.TokenURL,
		Scopes:       o.Scopes,
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return cc.Client(ctx), nil
}

// webhookClient picks the HTTP client of a webhook: a client service,
// an oauth2 client, or nil for http.DefaultClient.
func webhookClient(c *Container, opts Options) (handler.HTTPDoer, error) {
	if _, ok := opts["client"]; ok {
		return service[handler.HTTPDoer](c, opts, "client")
	}
	if v, ok := opts["oauth2"]; ok && v != nil {
		return oauth2Client(c.ctx, v, nil)
	}
	return nil, nil
}

func webhookHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	if _, err := requireString(opts, "url"); err != nil {
		return nil, err
	}
	var cfg handler.WebhookConfig
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := webhookClient(c, opts)
	if err != nil {
		return nil, err
	}
	return handler.NewWebhook(client, cfg, level, bubble), nil
}

func slackWebhookHandlerFactory(c *Container, _ string, options any) (logger.Handler, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	url, err := requireString(opts, "url")
	if err != nil {
		return nil, err
	}
	var slack handler.SlackConfig
	if err := decode(opts, &slack); err != nil {
		return nil, err
	}
	level, bubble, err := levelAndBubble(opts)
	if err != nil {
		return nil, err
	}
	client, err := webhookClient(c, opts)
	if err != nil {
		return nil, err
	}
	return handler.NewSlackWebhook(client, url, slack, level, bubble), nil
}
