package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/slogfactory/pkg/health"
)

// Healthcheck returns a health check that pings client.
// A nil client is reported as unhealthy.
func Healthcheck(client redis.UniversalClient) health.CheckFunc {
	return func(ctx context.Context) error {
		if client == nil {
			return fmt.Errorf("%w: no client", ErrHealthcheckFailed)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
