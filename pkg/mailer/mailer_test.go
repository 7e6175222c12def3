package mailer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/pkg/mailer"
)

type fakeSender struct {
	err  error
	sent []*mailer.Email
}

func (f *fakeSender) Send(_ context.Context, email *mailer.Email) error {
	f.sent = append(f.sent, email)
	return f.err
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	testCases := []struct {
		name  string
		email *mailer.Email
		want  error
	}{
		{name: "no recipient", email: &mailer.Email{Subject: "s", HTML: "h"}, want: mailer.ErrNoRecipient},
		{name: "no subject", email: &mailer.Email{To: []string{"a@b.c"}, HTML: "h"}, want: mailer.ErrNoSubject},
		{name: "no content", email: &mailer.Email{To: []string{"a@b.c"}, Subject: "s"}, want: mailer.ErrNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sender := &fakeSender{}
			require.ErrorIs(t, mailer.New(sender).Send(ctx, tc.email), tc.want)
			assert.Empty(t, sender.sent)
		})
	}

	t.Run("text only is enough", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		require.NoError(t, mailer.New(sender).Send(ctx, &mailer.Email{To: []string{"a@b.c"}, Subject: "s", Text: "t"}))
		assert.Len(t, sender.sent, 1)
	})

	t.Run("sender failure is wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("rate limited")
		err := mailer.New(&fakeSender{err: boom}).Send(ctx, &mailer.Email{To: []string{"a@b.c"}, Subject: "s", HTML: "h"})
		require.ErrorIs(t, err, mailer.ErrSendFailed)
		require.ErrorIs(t, err, boom)
	})
}

func TestMailer_SendMarkdown(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	m := mailer.New(sender)

	src := []byte("### ERROR: payment failed\n\n| Key | Value |\n| --- | --- |\n| order | `42` |\n")
	require.NoError(t, m.SendMarkdown(context.Background(), &mailer.Email{To: []string{"ops@example.com"}, Subject: "alert"}, src))
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	assert.Contains(t, email.HTML, "<h3>ERROR: payment failed</h3>")
	assert.Contains(t, email.HTML, "<table>")
	assert.Contains(t, email.HTML, "<code>42</code>")
	assert.Equal(t, string(src), email.Text)
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ops <ops@example.com>", mailer.Recipient("Ops", "ops@example.com"))
	assert.Equal(t, "ops@example.com", mailer.Recipient("", "ops@example.com"))
	assert.Equal(t, mailer.Tags{"logs": struct{}{}}, mailer.SimpleTags("logs"))
}
