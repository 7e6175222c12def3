package health

import "errors"

var (
	// ErrCheckFailed is wrapped by Report.Err when a client check fails.
	ErrCheckFailed = errors.New("health: client unhealthy")

	// ErrCheckTimeout wraps the context error of a check that ran out of time.
	ErrCheckTimeout = errors.New("health: client check timed out")
)
