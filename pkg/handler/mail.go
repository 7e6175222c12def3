package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
	"github.com/dmitrymomot/slogfactory/pkg/mailer"
)

// Mail content types.
const (
	ContentTypeHTML     = "text/html"
	ContentTypeMarkdown = "text/markdown"
	ContentTypePlain    = "text/plain"
)

// ErrInvalidContentType is returned for unsupported mail content types.
var ErrInvalidContentType = errors.New("handler: unsupported mail content type")

// MailSender is implemented by *mailer.Mailer.
type MailSender interface {
	Send(ctx context.Context, email *mailer.Email) error
	Markdown(source []byte) (string, error)
}

// MailConfig describes the sent message. Subject may use line placeholders
// such as %level_name% and %message%; they are filled from the most severe
// record of the batch.
type MailConfig struct {
	From        string   `mapstructure:"from"`
	Subject     string   `mapstructure:"subject"`
	ContentType string   `mapstructure:"content_type"`
	To          []string `mapstructure:"to"`
}

// Mail sends each record, or each batch of records, as one email.
type Mail struct {
	logger.Processing
	client  MailSender
	subject *formatter.Line
	cfg     MailConfig
}

// NewMail creates a Mail handler.
func NewMail(client MailSender, cfg MailConfig, level slog.Level, bubble bool) (*Mail, error) {
	if cfg.ContentType == "" {
		cfg.ContentType = ContentTypeHTML
	}
	var def func() logger.Formatter
	switch cfg.ContentType {
	case ContentTypeHTML:
		def = func() logger.Formatter { return formatter.NewHTML("", false) }
	case ContentTypeMarkdown:
		def = func() logger.Formatter { return formatter.NewMarkdown("") }
	case ContentTypePlain:
		def = func() logger.Formatter { return formatter.NewLine() }
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, cfg.ContentType)
	}
	return &Mail{
		Processing: logger.NewProcessing(level, bubble, def),
		client:     client,
		subject:    formatter.NewLine(formatter.WithFormat(cfg.Subject), formatter.WithIgnoreEmpty(true)),
		cfg:        cfg,
	}, nil
}

func (h *Mail) Config() MailConfig { return h.cfg }

func (h *Mail) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	if !h.IsHandling(rec.Level) {
		return false, nil
	}
	if err := h.HandleBatch(ctx, []logger.Record{rec}); err != nil {
		return false, err
	}
	return !h.Bubble(), nil
}

// HandleBatch sends the handled records as a single email.
func (h *Mail) HandleBatch(ctx context.Context, recs []logger.Record) error {
	handled := make([]logger.Record, 0, len(recs))
	for _, rec := range recs {
		if h.IsHandling(rec.Level) {
			handled = append(handled, h.Process(ctx, rec))
		}
	}
	if len(handled) == 0 {
		return nil
	}

	body, err := h.Formatter().FormatBatch(handled)
	if err != nil {
		return err
	}
	subject, err := h.subject.Format(highest(handled))
	if err != nil {
		return err
	}

	email := &mailer.Email{
		From:    h.cfg.From,
		To:      h.cfg.To,
		Subject: strings.TrimSpace(string(subject)),
	}
	switch h.cfg.ContentType {
	case ContentTypeMarkdown:
		html, err := h.client.Markdown(body)
		if err != nil {
			return err
		}
		email.HTML = html
		email.Text = string(body)
	case ContentTypePlain:
		email.Text = string(body)
	default:
		email.HTML = string(body)
	}
	return h.client.Send(ctx, email)
}

// Close is a no-op: the client is owned by the container.
func (h *Mail) Close() error { return nil }

func highest(recs []logger.Record) logger.Record {
	top := recs[0]
	for _, rec := range recs[1:] {
		if rec.Level > top.Level {
			top = rec
		}
	}
	return top
}
