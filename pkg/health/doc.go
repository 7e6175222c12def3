// Package health runs named health checks in parallel.
//
// The service clients built by the container (redis, postgres, river, S3)
// expose func(context.Context) error closures. Run executes them under a
// shared timeout and aggregates the outcome:
//
//	report := health.Run(ctx, health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second))
//	if err := report.Err(); err != nil {
//	    // at least one dependency is down
//	}
//
// A check that does not return before the timeout is reported with
// [ErrCheckTimeout]; a failed report wraps [ErrCheckFailed].
package health
