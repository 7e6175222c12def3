package redis

import "errors"

// Errors returned by Open and Healthcheck.
var (
	ErrEmptyConnectionURL = errors.New("redis: connection url is empty")
	ErrFailedToParseURL   = errors.New("redis: url must use the redis or rediss scheme")
	ErrConnectionFailed   = errors.New("redis: server did not answer")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
