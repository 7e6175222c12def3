package handler

import (
	"errors"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// closeAfterFlush closes h and joins the error with the flush error.
func closeAfterFlush(flushErr error, h logger.Handler) error {
	return errors.Join(flushErr, h.Close())
}
