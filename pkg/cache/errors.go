package cache

import "errors"

// ErrClosed is returned when an operation is attempted on a closed store.
var ErrClosed = errors.New("cache: closed")
