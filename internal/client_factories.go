package internal

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/slogfactory/pkg/db"
	"github.com/dmitrymomot/slogfactory/pkg/job"
	"github.com/dmitrymomot/slogfactory/pkg/mailer"
	"github.com/dmitrymomot/slogfactory/pkg/mailer/resend"
	"github.com/dmitrymomot/slogfactory/pkg/redis"
	"github.com/dmitrymomot/slogfactory/pkg/storage"
)

const defaultHTTPClientTimeout = 10 * time.Second

// DefaultClientFactories returns the built-in service client types.
func DefaultClientFactories() map[string]Factory[any] {
	return map[string]Factory[any]{
		"redis":    redisClientFactory,
		"postgres": postgresClientFactory,
		"s3":       s3ClientFactory,
		"sentry":   sentryClientFactory,
		"resend":   resendClientFactory,
		"river":    riverClientFactory,
		"http":     httpClientFactory,
	}
}

func redisClientFactory(c *Container, _ string, options any) (any, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	cfg := redis.DefaultConfig()
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, requiredError("url")
	}
	client, err := redis.Open(c.ctx, cfg)
	if err != nil {
		return nil, notCreated(err)
	}
	return client, nil
}

func postgresClientFactory(c *Container, _ string, options any) (any, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	cfg := db.DefaultConfig()
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, requiredError("url")
	}
	pool, err := db.Connect(c.ctx, cfg)
	if err != nil {
		return nil, notCreated(err)
	}
	return pool, nil
}

func s3ClientFactory(_ *Container, _ string, options any) (any, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	var cfg storage.Config
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, requiredError("bucket")
	}
	s, err := storage.New(cfg)
	if err != nil {
		return nil, notCreated(err)
	}
	return s, nil
}

type sentryClientOptions struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	Release     string  `mapstructure:"release"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Debug       bool    `mapstructure:"debug"`
}

// sentryClientFactory returns a *sentry.Hub with its own client.
// An empty dsn yields a hub that drops every event.
func sentryClientFactory(_ *Container, _ string, options any) (any, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	o := sentryClientOptions{SampleRate: 1}
	if err := decode(opts, &o); err != nil {
		return nil, err
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         o.DSN,
		Environment: o.Environment,
		Release:     o.Release,
		SampleRate:  o.SampleRate,
		Debug:       o.Debug,
	})
	if err != nil {
		return nil, notCreated(err)
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

func resendClientFactory(_ *Container, _ string, options any) (any, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	var cfg resend.Config
	if err := decode(opts, &cfg); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, requiredError("api_key")
	}
	if cfg.SenderEmail == "" {
		return nil, requiredError("sender_email")
	}
	return mailer.New(resend.New(cfg)), nil
}

// riverClientFactory builds an insert-only river client on top of a postgres service.
func riverClientFactory(c *Container, _ string, options any) (any, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	pool, err := service[*pgxpool.Pool](c, opts, "client")
	if err != nil {
		return nil, err
	}
	e, err := job.NewEnqueuer(pool, job.WithEnqueuerLogger(c.log))
	if err != nil {
		return nil, notCreated(err)
	}
	return e, nil
}

// httpClientFactory returns an *http.Client, authenticated with the
// client credentials flow when oauth2 is set.
func httpClientFactory(c *Container, _ string, options any) (any, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	timeout, err := durationOpt(opts, "timeout", defaultHTTPClientTimeout)
	if err != nil {
		return nil, err
	}
	base := &http.Client{Timeout: timeout}
	v, ok := opts["oauth2"]
	if !ok || v == nil {
		return base, nil
	}
	client, err := oauth2Client(c.ctx, v, base)
	if err != nil {
		return nil, err
	}
	client.Timeout = timeout
	return client, nil
}
