package mailer

import "errors"

var (
	ErrNoRecipient  = errors.New("mailer: email must have at least one recipient")
	ErrNoSubject    = errors.New("mailer: email must have a subject")
	ErrNoContent    = errors.New("mailer: email must have content")
	ErrRenderFailed = errors.New("mailer: failed to render markdown")
	ErrSendFailed   = errors.New("mailer: failed to send email")
)
