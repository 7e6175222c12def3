package resend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/pkg/mailer"
)

func TestRequest(t *testing.T) {
	t.Parallel()

	s := New(Config{APIKey: "re_test", SenderEmail: "alerts@example.com", SenderName: "Alerts"})

	t.Run("default sender", func(t *testing.T) {
		t.Parallel()
		req := s.request(&mailer.Email{
			To:      []string{"ops@example.com"},
			Subject: "CRITICAL",
			HTML:    "<p>x</p>",
		})
		assert.Equal(t, "Alerts <alerts@example.com>", req.From)
		assert.Equal(t, []string{"ops@example.com"}, req.To)
		assert.Nil(t, req.Tags)
	})

	t.Run("explicit sender", func(t *testing.T) {
		t.Parallel()
		req := s.request(&mailer.Email{From: "other@example.com"})
		assert.Equal(t, "other@example.com", req.From)
	})
}

func TestTags(t *testing.T) {
	t.Parallel()

	got := tags(mailer.Tags{
		"level":       "critical",
		"channel":     "app.billing",
		"digest":      struct{}{},
		"records":     7,
		"has context": nil,
	})
	require.Len(t, got, 5)

	names := make([]string, len(got))
	values := make(map[string]string, len(got))
	for i, tag := range got {
		names[i] = tag.Name
		values[tag.Name] = tag.Value
	}
	assert.Equal(t, []string{"channel", "digest", "has_context", "level", "records"}, names)
	assert.Equal(t, "app_billing", values["channel"])
	assert.Equal(t, "true", values["digest"])
	assert.Equal(t, "true", values["has_context"])
	assert.Equal(t, "7", values["records"])
}
