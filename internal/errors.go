package internal

import (
	"errors"
	"fmt"
)

// Resolution errors. Every error returned by the container and the factories
// matches one of them with errors.Is.
var (
	// ErrServiceNotFound means a requested service, plugin or nested
	// dependency could not be resolved. It always wraps the cause.
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceNotCreated means the configuration of a service is invalid
	// or its constructor failed.
	ErrServiceNotCreated = errors.New("service not created")
)

// Configuration errors wrapped by ErrServiceNotCreated.
var (
	ErrOptionsNotArray       = errors.New("options must be an array")
	ErrHandlersNotArray      = errors.New("handlers must be an array")
	ErrProcessorsNotArray    = errors.New("processors must be an array")
	ErrHandlerTypeMissing    = errors.New("handler config must contain a type")
	ErrFormatterTypeMissing  = errors.New("formatter config must contain a type")
	ErrProcessorTypeMissing  = errors.New("processor config must contain a type")
	ErrStrategyTypeMissing   = errors.New("activation strategy config must contain a type")
	ErrNoActiveHandlers      = errors.New("no active handlers specified")
	ErrInvalidTimezone       = errors.New("an invalid timezone was set")
	ErrFormatterNotSupported = errors.New("handler does not support formatters")
	ErrProcessorNotSupported = errors.New("handler does not support processors")
)

func notCreated(cause error) error {
	return fmt.Errorf("%w: %w", ErrServiceNotCreated, cause)
}

func notCreatedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrServiceNotCreated, fmt.Sprintf(format, args...))
}

func notFound(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrServiceNotFound, what, cause)
}

func requiredError(key string) error {
	return notCreatedf("%s is required", key)
}

// ErrContainerClosed is returned by Get after Close.
var ErrContainerClosed = errors.New("container is closed")
