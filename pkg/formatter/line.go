package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultLineFormat is the template used when none is configured.
const DefaultLineFormat = "[%datetime%] %channel%.%level_name%: %message% %context% %extra%\n"

var placeholder = regexp.MustCompile(`%(context|extra)\.([^%]+)%`)

// Line renders records as single lines following a template.
// Supported placeholders: %datetime%, %channel%, %level_name%, %level%, %message%,
// %context%, %extra% and %context.key% / %extra.key% for individual attributes.
type Line struct {
	norm         *Normalizer
	format       string
	inlineBreaks bool
	ignoreEmpty  bool
}

// LineOption configures a Line formatter.
type LineOption func(*Line)

// WithFormat sets the line template.
func WithFormat(format string) LineOption {
	return func(f *Line) {
		if format != "" {
			f.format = format
		}
	}
}

// WithLineDateFormat sets the timestamp layout.
func WithLineDateFormat(layout string) LineOption {
	return func(f *Line) {
		if layout != "" {
			f.norm = NewNormalizer(WithDateFormat(layout))
		}
	}
}

// WithInlineLineBreaks keeps line breaks found in messages and values.
func WithInlineLineBreaks(v bool) LineOption {
	return func(f *Line) {
		f.inlineBreaks = v
	}
}

// WithIgnoreEmpty renders empty context and extra as nothing instead of "[]".
func WithIgnoreEmpty(v bool) LineOption {
	return func(f *Line) {
		f.ignoreEmpty = v
	}
}

// NewLine creates a Line formatter using DefaultLineFormat and LineDate.
func NewLine(opts ...LineOption) *Line {
	f := &Line{
		norm:   NewNormalizer(WithDateFormat(LineDate)),
		format: DefaultLineFormat,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Line) Template() string { return f.format }
func (f *Line) DateFormat() string { return f.norm.DateFormat() }
func (f *Line) AllowsInlineLineBreaks() bool { return f.inlineBreaks }
func (f *Line) IgnoresEmptyContextAndExtra() bool { return f.ignoreEmpty }

// Format renders one record.
func (f *Line) Format(rec logger.Record) ([]byte, error) {
	vars := f.norm.Normalize(rec)
	context, _ := vars["context"].(map[string]any)
	extra, _ := vars["extra"].(map[string]any)

	out := placeholder.ReplaceAllStringFunc(f.format, func(token string) string {
		m := placeholder.FindStringSubmatch(token)
		src := context
		if m[1] == "extra" {
			src = extra
		}
		v, ok := src[m[2]]
		if !ok {
			return ""
		}
		delete(src, m[2])
		return f.stringify(v)
	})

	replacer := strings.NewReplacer(
		"%datetime%", fmt.Sprint(vars["datetime"]),
		"%channel%", rec.Channel,
		"%level_name%", rec.LevelName(),
		"%level%", fmt.Sprint(vars["level"]),
		"%message%", f.clean(rec.Message),
		"%context%", f.section(context),
		"%extra%", f.section(extra),
	)
	out = replacer.Replace(out)
	if f.ignoreEmpty {
		out = collapseSpaces(out)
	}
	return []byte(out), nil
}

// FormatBatch concatenates the formatted records.
func (f *Line) FormatBatch(recs []logger.Record) ([]byte, error) {
	var b strings.Builder
	for _, rec := range recs {
		out, err := f.Format(rec)
		if err != nil {
			return nil, err
		}
		b.Write(out)
	}
	return []byte(b.String()), nil
}

func (f *Line) section(m map[string]any) string {
	if len(m) == 0 {
		if f.ignoreEmpty {
			return ""
		}
		return "[]"
	}
	return f.stringify(m)
}

func (f *Line) stringify(v any) string {
	return f.clean(stringify(v))
}

func (f *Line) clean(s string) string {
	if f.inlineBreaks {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
}

// stringify renders scalars as text and everything else as JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, uint64, float64:
		return fmt.Sprint(val)
	}
	out, err := marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// collapseSpaces removes the gaps left by empty sections.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
