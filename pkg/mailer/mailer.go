package mailer

import (
	"bytes"
	"context"
	"errors"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Sender delivers a prepared email through a provider.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Mailer validates messages and hands them to a Sender.
type Mailer struct {
	sender Sender
	md     goldmark.Markdown
}

// New creates a Mailer on top of sender.
func New(sender Sender) *Mailer {
	return &Mailer{
		sender: sender,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Send validates and sends email.
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.HTML == "" && email.Text == "" {
		return ErrNoContent
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// SendMarkdown renders source to HTML, keeps it as the text part and sends email.
func (m *Mailer) SendMarkdown(ctx context.Context, email *Email, source []byte) error {
	html, err := m.Markdown(source)
	if err != nil {
		return err
	}
	email.HTML = html
	email.Text = string(source)
	return m.Send(ctx, email)
}

// Markdown converts GitHub flavoured Markdown to HTML.
func (m *Mailer) Markdown(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(source, &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
