// Package mailer sends log digests by email.
//
// A Mailer validates messages and delegates delivery to a Sender; the resend
// subpackage provides a Sender for the Resend API. Markdown bodies are
// rendered to HTML with goldmark (GitHub flavoured):
//
//	m := mailer.New(resend.New(resend.Config{APIKey: key, SenderEmail: "alerts@example.com"}))
//	err := m.SendMarkdown(ctx, &mailer.Email{
//	    To:      []string{"oncall@example.com"},
//	    Subject: "CRITICAL in app",
//	}, body)
package mailer
