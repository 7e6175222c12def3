package resend

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/resend/resend-go/v3"
	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/mailer"
)

// Sender delivers log notification emails through the Resend API.
type Sender struct {
	client *resend.Client
	from   string
}

// New creates a Resend sender. The default from address is built from
// cfg.SenderName and cfg.SenderEmail.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if _, err := s.client.Emails.SendWithContext(ctx, s.request(email)); err != nil {
		return fmt.Errorf("resend: send %q: %w", email.Subject, err)
	}
	return nil
}

func (s *Sender) request(email *mailer.Email) *resend.SendEmailRequest {
	return &resend.SendEmailRequest{
		From:    cmp.Or(email.From, s.from),
		To:      email.To,
		Cc:      email.CC,
		Bcc:     email.BCC,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		Headers: email.Headers,
		Tags:    tags(email.Tags),
	}
}

// tags converts mailer tags in name order. Presence-only tags become "true";
// characters Resend rejects are replaced with underscores.
func tags(in mailer.Tags) []resend.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]resend.Tag, 0, len(in))
	for _, name := range slices.Sorted(maps.Keys(in)) {
		value := "true"
		switch v := in[name].(type) {
		case nil, struct{}:
		default:
			value = cast.ToString(v)
		}
		out = append(out, resend.Tag{Name: tagSafe(name), Value: tagSafe(value)})
	}
	return out
}

func tagSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}
