package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// setNXer is the part of the go-redis client the store needs.
type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// Redis is a Store shared between processes through SET NX.
type Redis struct {
	client setNXer
	opts   *redisOptions
}

// NewRedis creates a Redis store. The client lifecycle stays with the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	return newRedis(client, opts...)
}

func newRedis(client setNXer, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Redis{client: client, opts: o}
}

// Remember implements Store.
func (r *Redis) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	created, err := r.client.SetNX(ctx, r.prefixedKey(key), 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

// Close is a no-op: the client is owned by the container.
func (r *Redis) Close() error {
	return nil
}

func (r *Redis) prefixedKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Store = (*Redis)(nil)
