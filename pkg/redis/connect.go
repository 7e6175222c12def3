package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis client parameters.
// Field tags match the option keys of the redis service client.
type Config struct {
	// redis:// or rediss:// URL; the path selects the database.
	URL string `mapstructure:"url"`

	MaxIdleTime   time.Duration `mapstructure:"max_idle_time"`
	MaxActiveTime time.Duration `mapstructure:"max_active_time"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`

	// Retries only apply when Ping is set.
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// Ping verifies connectivity before Open returns.
	Ping bool `mapstructure:"ping"`
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		MaxIdleTime:   10 * time.Minute,
		MaxActiveTime: 30 * time.Minute,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		DialTimeout:   5 * time.Second,
		RetryAttempts: 3,
		RetryInterval: time.Second,
		PoolSize:      10,
	}
}

func (cfg Config) clientOptions() (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = max(cfg.MinIdleConns, 0)
	if cfg.MaxIdleTime > 0 {
		opts.ConnMaxIdleTime = cfg.MaxIdleTime
	}
	if cfg.MaxActiveTime > 0 {
		opts.ConnMaxLifetime = cfg.MaxActiveTime
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return opts, nil
}

// Open creates a Redis client. Without cfg.Ping it connects lazily on first
// use, so a logger can be built while the server is down.
//
//	cfg := redis.DefaultConfig()
//	cfg.URL = "redis://localhost:6379/0"
//	client, err := redis.Open(ctx, cfg)
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	if !cfg.Ping {
		return redis.NewClient(opts), nil
	}

	var lastErr error
	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}
