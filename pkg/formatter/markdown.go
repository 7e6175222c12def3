package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Markdown renders records as Markdown documents, e.g. for mail bodies
// converted to HTML later on.
type Markdown struct {
	norm *Normalizer
}

// NewMarkdown creates a Markdown formatter. Empty layout keeps SimpleDate.
func NewMarkdown(dateFormat string) *Markdown {
	return &Markdown{norm: NewNormalizer(WithDateFormat(dateFormat))}
}

func (f *Markdown) DateFormat() string { return f.norm.DateFormat() }

// Format renders one record.
func (f *Markdown) Format(rec logger.Record) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s: %s\n\n", rec.LevelName(), escapeMarkdown(rec.Message))
	fmt.Fprintf(&b, "- **Time**: %s\n", rec.Time.Format(f.norm.DateFormat()))
	fmt.Fprintf(&b, "- **Channel**: %s\n", escapeMarkdown(rec.Channel))
	f.table(&b, "Context", f.norm.Attrs(rec.Attrs))
	f.table(&b, "Extra", f.norm.Attrs(rec.Extra))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// FormatBatch renders the records separated by horizontal rules.
func (f *Markdown) FormatBatch(recs []logger.Record) ([]byte, error) {
	parts := make([]string, 0, len(recs))
	for _, rec := range recs {
		out, err := f.Format(rec)
		if err != nil {
			return nil, err
		}
		parts = append(parts, string(out))
	}
	return []byte(strings.Join(parts, "---\n\n")), nil
}

func (f *Markdown) table(b *strings.Builder, title string, values map[string]any) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n#### %s\n\n| Key | Value |\n| --- | --- |\n", title)
	for _, k := range keys {
		v := strings.ReplaceAll(stringify(values[k]), "\n", " ")
		fmt.Fprintf(b, "| %s | `%s` |\n", escapeMarkdown(k), strings.ReplaceAll(v, "|", `\|`))
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`).Replace(s)
}
