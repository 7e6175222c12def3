package formatter

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

var levelColors = map[slog.Level]string{
	logger.LevelDebug:     "#CCCCCC",
	logger.LevelInfo:      "#28A745",
	logger.LevelNotice:    "#17A2B8",
	logger.LevelWarning:   "#FFC107",
	logger.LevelError:     "#FD7E14",
	logger.LevelCritical:  "#DC3545",
	logger.LevelAlert:     "#821722",
	logger.LevelEmergency: "#000000",
}

// HTML renders records as HTML tables, suitable for email bodies.
type HTML struct {
	norm      *Normalizer
	policy    *bluemonday.Policy
	allowHTML bool
}

// NewHTML creates an HTML formatter. When allowHTML is true messages and
// values are sanitized instead of escaped.
func NewHTML(dateFormat string, allowHTML bool) *HTML {
	return &HTML{
		norm:      NewNormalizer(WithDateFormat(dateFormat)),
		policy:    bluemonday.UGCPolicy(),
		allowHTML: allowHTML,
	}
}

func (f *HTML) DateFormat() string { return f.norm.DateFormat() }
func (f *HTML) AllowsHTML() bool { return f.allowHTML }

// Format renders one record.
func (f *HTML) Format(rec logger.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.component(rec).Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatBatch concatenates the rendered records.
func (f *HTML) FormatBatch(recs []logger.Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range recs {
		if err := f.component(rec).Render(context.Background(), &buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (f *HTML) component(rec logger.Record) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		color := levelColors[rec.Level]
		if color == "" {
			color = levelColors[logger.LevelDebug]
		}
		rows := []func() error{
			func() error { return f.header(w, color, cases.Title(language.English).String(rec.LevelName())) },
			func() error { return f.row(w, "Message", f.text(rec.Message)) },
			func() error { return f.row(w, "Time", templ.EscapeString(rec.Time.Format(f.norm.DateFormat()))) },
			func() error { return f.row(w, "Channel", templ.EscapeString(rec.Channel)) },
		}
		if len(rec.Attrs) > 0 {
			rows = append(rows, func() error { return f.section(w, "Context", f.norm.Attrs(rec.Attrs)) })
		}
		if len(rec.Extra) > 0 {
			rows = append(rows, func() error { return f.section(w, "Extra", f.norm.Attrs(rec.Extra)) })
		}
		for _, row := range rows {
			if err := row(); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>")
		return err
	})
}

func (f *HTML) header(w io.Writer, color, title string) error {
	_, err := io.WriteString(w, `<h1 style="background: `+color+`;color: #ffffff;padding: 5px;" class="log-output">`+
		templ.EscapeString(title)+`</h1><table cellspacing="1" width="100%" class="log-output">`)
	return err
}

func (f *HTML) row(w io.Writer, th, td string) error {
	_, err := io.WriteString(w, `<tr style="padding: 4px;text-align: left;">`+
		`<th style="vertical-align: top;background: #ccc;color: #000" width="100">`+templ.EscapeString(th)+`:</th>`+
		`<td style="padding: 4px;text-align: left;vertical-align: top;background: #eee;color: #000">`+td+`</td></tr>`)
	return err
}

func (f *HTML) section(w io.Writer, th string, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var inner bytes.Buffer
	inner.WriteString(`<table cellspacing="1" width="100%">`)
	for _, k := range keys {
		inner.WriteString(`<tr><th style="text-align: left;">` + templ.EscapeString(k) + `</th><td><pre>` +
			f.text(stringify(values[k])) + `</pre></td></tr>`)
	}
	inner.WriteString(`</table>`)
	return f.row(w, th, inner.String())
}

func (f *HTML) text(s string) string {
	if f.allowHTML {
		return f.policy.Sanitize(s)
	}
	return templ.EscapeString(s)
}
