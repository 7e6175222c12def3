package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultPlaceholderDate is the layout used for time values substituted into messages.
const DefaultPlaceholderDate = "2006-01-02T15:04:05.000000-07:00"

// Placeholder replaces {key} placeholders in the message with the matching
// call-site attribute.
type Placeholder struct {
	dateFormat string
	removeUsed bool
}

// NewPlaceholder creates the processor. Empty layout means DefaultPlaceholderDate.
// With removeUsed, substituted attributes are dropped from the record.
func NewPlaceholder(dateFormat string, removeUsed bool) *Placeholder {
	if dateFormat == "" {
		dateFormat = DefaultPlaceholderDate
	}
	return &Placeholder{dateFormat: dateFormat, removeUsed: removeUsed}
}

func (p *Placeholder) Process(_ context.Context, rec logger.Record) logger.Record {
	if !strings.Contains(rec.Message, "{") || len(rec.Attrs) == 0 {
		return rec
	}

	var used []string
	pairs := make([]string, 0, len(rec.Attrs)*2)
	for _, a := range rec.Attrs {
		token := "{" + a.Key + "}"
		if !strings.Contains(rec.Message, token) {
			continue
		}
		pairs = append(pairs, token, p.stringify(a.Value))
		used = append(used, a.Key)
	}
	if len(pairs) == 0 {
		return rec
	}

	rec.Message = strings.NewReplacer(pairs...).Replace(rec.Message)
	if p.removeUsed {
		rec.Attrs = slices.DeleteFunc(slices.Clone(rec.Attrs), func(a slog.Attr) bool {
			return slices.Contains(used, a.Key)
		})
	}
	return rec
}

func (p *Placeholder) stringify(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(p.dateFormat)
	case slog.KindGroup:
		m := make(map[string]string, len(v.Group()))
		for _, a := range v.Group() {
			m[a.Key] = p.stringify(a.Value)
		}
		out, _ := json.Marshal(m)
		return "array" + string(out)
	case slog.KindAny:
		switch val := v.Any().(type) {
		case nil:
			return "[null]"
		case error:
			return val.Error()
		case fmt.Stringer:
			return val.String()
		case time.Time:
			return val.Format(p.dateFormat)
		default:
			out, err := json.Marshal(val)
			if err != nil {
				return fmt.Sprintf("[object %T]", val)
			}
			return string(out)
		}
	default:
		return v.String()
	}
}
