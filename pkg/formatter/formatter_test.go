package formatter_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func record(args ...any) logger.Record {
	return logger.NewRecord(fixedTime, "app", logger.LevelWarning, "disk full", args...)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f := formatter.NewJSON()
		assert.Equal(t, formatter.BatchModeJSON, f.BatchMode())
		assert.True(t, f.AppendsNewline())
		assert.False(t, f.IgnoresEmptyContextAndExtra())
		assert.Equal(t, formatter.SimpleDate, f.DateFormat())
	})

	t.Run("format keeps field order", func(t *testing.T) {
		t.Parallel()

		out, err := formatter.NewJSON().Format(record("free", 10))
		require.NoError(t, err)
		assert.Equal(t,
			`{"message":"disk full","context":{"free":10},"level":300,"level_name":"WARNING","channel":"app","datetime":"2024-01-02T03:04:05.000000+00:00","extra":{}}`+"\n",
			string(out))
	})

	t.Run("ignore empty context and extra", func(t *testing.T) {
		t.Parallel()

		f := formatter.NewJSON(formatter.WithIgnoreEmptyContextAndExtra(true), formatter.WithAppendNewline(false))
		out, err := f.Format(record())
		require.NoError(t, err)
		assert.NotContains(t, string(out), "context")
		assert.NotContains(t, string(out), "extra")
	})

	t.Run("batch modes", func(t *testing.T) {
		t.Parallel()

		recs := []logger.Record{record(), record()}

		out, err := formatter.NewJSON().FormatBatch(recs)
		require.NoError(t, err)
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Len(t, decoded, 2)

		out, err = formatter.NewJSON(formatter.WithBatchMode(formatter.BatchModeNewlines)).FormatBatch(recs)
		require.NoError(t, err)
		assert.Equal(t, 1, countByte(out, '\n'))
	})
}

func countByte(b []byte, c byte) int {
	n := 0
	for _, x := range b {
		if x == c {
			n++
		}
	}
	return n
}

func TestLine(t *testing.T) {
	t.Parallel()

	t.Run("default template", func(t *testing.T) {
		t.Parallel()

		f := formatter.NewLine()
		assert.Equal(t, formatter.DefaultLineFormat, f.Template())
		assert.Equal(t, formatter.LineDate, f.DateFormat())

		out, err := f.Format(record("free", 10))
		require.NoError(t, err)
		assert.Equal(t, `[2024-01-02T03:04:05+00:00] app.WARNING: disk full {"free":10} []`+"\n", string(out))
	})

	t.Run("attribute placeholders are removed from sections", func(t *testing.T) {
		t.Parallel()

		f := formatter.NewLine(formatter.WithFormat("%message% free=%context.free% %context%\n"))
		out, err := f.Format(record("free", 10))
		require.NoError(t, err)
		assert.Equal(t, "disk full free=10 []\n", string(out))
	})

	t.Run("line breaks are flattened unless allowed", func(t *testing.T) {
		t.Parallel()

		rec := logger.NewRecord(fixedTime, "app", logger.LevelInfo, "first\nsecond")
		tmpl := formatter.WithFormat("%message%")

		out, err := formatter.NewLine(tmpl).Format(rec)
		require.NoError(t, err)
		assert.Equal(t, "first second", string(out))

		out, err = formatter.NewLine(tmpl, formatter.WithInlineLineBreaks(true)).Format(rec)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond", string(out))
	})

	t.Run("ignore empty sections", func(t *testing.T) {
		t.Parallel()

		f := formatter.NewLine(formatter.WithIgnoreEmpty(true))
		out, err := f.Format(record())
		require.NoError(t, err)
		assert.Equal(t, "[2024-01-02T03:04:05+00:00] app.WARNING: disk full\n", string(out))
	})
}

func TestNormalizer(t *testing.T) {
	t.Parallel()

	t.Run("depth limit", func(t *testing.T) {
		t.Parallel()

		n := formatter.NewNormalizer(formatter.WithMaxNormalizeDepth(1))
		got := n.Attrs([]slog.Attr{slog.Any("a", map[string]any{"b": 1})})
		assert.Equal(t, map[string]any{"a": map[string]any{"b": "Over 1 levels deep, aborting normalization"}}, got)
	})

	t.Run("item limit", func(t *testing.T) {
		t.Parallel()

		n := formatter.NewNormalizer(formatter.WithMaxNormalizeItemCount(2))
		got := n.Value(slog.AnyValue([]int{1, 2, 3}))
		assert.Equal(t, []any{1, 2, "Over 2 items (3 total), aborting normalization"}, got)
	})

	t.Run("errors keep their chain", func(t *testing.T) {
		t.Parallel()

		got := formatter.NewNormalizer().Value(slog.AnyValue(errors.Join(io.EOF)))
		m, ok := got.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "EOF", m["message"])
		assert.Contains(t, m, "class")
	})

	t.Run("groups with empty key are inlined", func(t *testing.T) {
		t.Parallel()

		got := formatter.NewNormalizer().Attrs([]slog.Attr{slog.Group("", slog.String("k", "v"))})
		assert.Equal(t, map[string]any{"k": "v"}, got)
	})
}

func TestScalar(t *testing.T) {
	t.Parallel()

	got := formatter.NewScalar("").Scalars(record("user", map[string]any{"id": 7}, "ok", true))
	ctx, ok := got["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `{"id":7}`, ctx["user"])
	assert.Equal(t, true, ctx["ok"])
}

func TestHTML(t *testing.T) {
	t.Parallel()

	rec := logger.NewRecord(fixedTime, "web", logger.LevelError, `<script>alert(1)</script><b>bold</b>`)

	out, err := formatter.NewHTML("", false).Format(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, string(out), ">Error</h1>")

	out, err = formatter.NewHTML("", true).Format(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<b>bold</b>")
	assert.NotContains(t, string(out), "<script>")
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	out, err := formatter.NewMarkdown("").Format(record("free", 10))
	require.NoError(t, err)
	assert.Contains(t, string(out), "### WARNING: disk full")
	assert.Contains(t, string(out), "| free | `10` |")
}

func TestLogstash(t *testing.T) {
	t.Parallel()

	_, err := formatter.NewLogstash("")
	require.ErrorIs(t, err, formatter.ErrApplicationNameRequired)

	f, err := formatter.NewLogstash("billing", formatter.WithSystemName("web-1"), formatter.WithContextKey("ctx"))
	require.NoError(t, err)
	out, err := f.Format(record("free", 10))
	require.NoError(t, err)

	var event map[string]any
	require.NoError(t, json.Unmarshal(out, &event))
	assert.Equal(t, "billing", event["type"])
	assert.Equal(t, "web-1", event["host"])
	assert.Equal(t, float64(1), event["@version"])
	assert.Equal(t, map[string]any{"free": float64(10)}, event["ctx"])
	assert.NotContains(t, event, "extra")
}

func TestGELF(t *testing.T) {
	t.Parallel()

	f := formatter.NewGELF(formatter.WithGELFSystemName("web-1"), formatter.WithMaxLength(5))
	msg := f.Message(logger.NewRecord(fixedTime, "app", logger.LevelCritical, "first line\nsecond", "user", "alice-smith"))

	assert.Equal(t, "1.1", msg["version"])
	assert.Equal(t, "web-1", msg["host"])
	assert.Equal(t, 2, msg["level"])
	assert.Equal(t, "first", msg["short_message"])
	assert.Equal(t, "alice", msg["_ctxt_user"])
	assert.Contains(t, msg, "full_message")
}

func TestGoogleCloudLogging(t *testing.T) {
	t.Parallel()

	out, err := formatter.NewGoogleCloudLogging("").Format(record())
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out, &entry))
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "2024-01-02T03:04:05Z", entry["time"])
	assert.NotContains(t, entry, "level")
}

func TestFluentd(t *testing.T) {
	t.Parallel()

	out, err := formatter.NewFluentd(true).Format(record("free", 10))
	require.NoError(t, err)
	assert.Equal(t, `["app.warning",1704164645,{"message":"disk full","context":{"free":10},"extra":{}}]`, string(out))

	out, err = formatter.NewFluentd(false).Format(record())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"level_name":"WARNING"`)
}

func TestLogglyAndLogmatic(t *testing.T) {
	t.Parallel()

	out, err := formatter.NewLoggly().Format(record())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"timestamp":"2024-01-02T03:04:05.000000+0000"`)
	assert.NotContains(t, string(out), "datetime")

	out, err = formatter.NewLogmatic("web-1", "shop").Format(record())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"hostname":"web-1"`)
	assert.Contains(t, string(out), `"appname":"shop"`)
}

func TestSyslog(t *testing.T) {
	t.Parallel()

	f := formatter.NewSyslog("")
	assert.Equal(t, "-", f.ApplicationName())

	out, err := f.Format(record())
	require.NoError(t, err)
	assert.Regexp(t, `^<12>1 2024-01-02T03:04:05.000000Z \S+ - \d+ - - app.WARNING: disk full\n$`, string(out))
}
