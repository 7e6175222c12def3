package handler

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// RedisListClient is the part of the go-redis client used by Redis.
type RedisListClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisPublisher is the part of the go-redis client used by RedisPubSub.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis appends formatted records to a Redis list, optionally capped.
type Redis struct {
	logger.Processing
	client  RedisListClient
	key     string
	capSize int64
}

// NewRedis creates a Redis handler. A positive capSize keeps only the newest
// capSize entries of the list.
func NewRedis(client RedisListClient, key string, capSize int, level slog.Level, bubble bool) *Redis {
	return &Redis{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		client:     client,
		key:        key,
		capSize:    int64(max(capSize, 0)),
	}
}

func (h *Redis) Key() string { return h.key }
func (h *Redis) CapSize() int { return int(h.capSize) }

func (h *Redis) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, _ logger.Record, formatted []byte) error {
		if err := h.client.RPush(ctx, h.key, string(formatted)).Err(); err != nil {
			return err
		}
		if h.capSize > 0 {
			return h.client.LTrim(ctx, h.key, -h.capSize, -1).Err()
		}
		return nil
	})
}

func (h *Redis) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Close is a no-op: the client is owned by the container.
func (h *Redis) Close() error { return nil }

// RedisPubSub publishes formatted records on a Redis channel.
type RedisPubSub struct {
	logger.Processing
	client RedisPublisher
	key    string
}

// NewRedisPubSub creates a RedisPubSub handler.
func NewRedisPubSub(client RedisPublisher, key string, level slog.Level, bubble bool) *RedisPubSub {
	return &RedisPubSub{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		client:     client,
		key:        key,
	}
}

func (h *RedisPubSub) Key() string { return h.key }

func (h *RedisPubSub) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, _ logger.Record, formatted []byte) error {
		return h.client.Publish(ctx, h.key, string(formatted)).Err()
	})
}

func (h *RedisPubSub) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

func (h *RedisPubSub) Close() error { return nil }
