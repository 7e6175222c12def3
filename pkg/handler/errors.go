package handler

import "errors"

var (
	// ErrNoHandlers is returned when a group handler is built without children.
	ErrNoHandlers = errors.New("handler: at least one handler is required")
	// ErrEmptyStream is returned when a stream handler has neither a writer nor a path.
	ErrEmptyStream = errors.New("handler: stream or path is required")
	// ErrInvalidConnectionString is returned for unsupported socket addresses.
	ErrInvalidConnectionString = errors.New("handler: invalid connection string")
	// ErrInvalidFactor is returned when a sampling factor is not positive.
	ErrInvalidFactor = errors.New("handler: sampling factor must be greater than zero")
	// ErrUnknownFacility is returned for syslog facility names that do not exist.
	ErrUnknownFacility = errors.New("handler: unknown syslog facility")
	// ErrInvalidRFC is returned for syslog RFC values other than 3164 and 5424.
	ErrInvalidRFC = errors.New("handler: syslog rfc must be 3164 or 5424")
	// ErrInvalidSchedule is returned for rotation schedules cron cannot parse.
	ErrInvalidSchedule = errors.New("handler: invalid rotation schedule")
	// ErrUnexpectedStatus is returned when a webhook answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("handler: unexpected webhook status")
	// ErrClosed is returned when writing to a closed handler.
	ErrClosed = errors.New("handler: closed")
)
