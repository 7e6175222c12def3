// Package redis builds the go-redis clients used by the redis, redis_pubsub
// and deduplication handlers.
//
// Clients connect lazily unless Config.Ping is set, so building a logger from
// configuration does not require a reachable server:
//
//	cfg := redis.DefaultConfig()
//	cfg.URL = "redis://localhost:6379/0"
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Healthcheck adapts a client to the func(context.Context) error shape used
// by the health package.
package redis
