package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/slogfactory/pkg/health"
)

// Connect creates a PostgreSQL connection pool.
// With cfg.Ping the pool is pinged, retrying with linear backoff.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	connConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxConns > 0 {
		connConfig.MaxConns = cfg.MaxConns
	}
	connConfig.MinConns = cfg.MinConns
	if cfg.HealthCheckPeriod > 0 {
		connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		connConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	if !cfg.Ping {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err != nil {
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
		return pool, nil
	}

	var lastErr error
	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

// Healthcheck returns a health check that pings pool.
func Healthcheck(pool *pgxpool.Pool) health.CheckFunc {
	return func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("%w: no pool", ErrHealthcheckFailed)
		}
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
