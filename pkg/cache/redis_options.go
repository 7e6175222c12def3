package cache

// RedisOption configures the Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{prefix: "slogfactory:dedup"}
}

// WithPrefix sets the key namespace; keys are stored as "{prefix}:{key}".
// Default: "slogfactory:dedup".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}
