package job

import "errors"

var (
	// ErrPoolRequired is returned when creating an enqueuer without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrHealthcheckFailed is returned when the queue database cannot be reached.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
