package formatter

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultGELFMaxLength is the maximum length of a single GELF field.
const DefaultGELFMaxLength = 32766

// GELF renders records as Graylog Extended Log Format 1.1 messages.
type GELF struct {
	norm          *Normalizer
	systemName    string
	extraPrefix   string
	contextPrefix string
	maxLength     int
}

// GELFOption configures a GELF formatter.
type GELFOption func(*GELF)

// WithGELFSystemName sets the host reported in messages.
func WithGELFSystemName(name string) GELFOption {
	return func(f *GELF) {
		if name != "" {
			f.systemName = name
		}
	}
}

// WithExtraPrefix prefixes processor attribute keys.
func WithExtraPrefix(prefix string) GELFOption {
	return func(f *GELF) {
		f.extraPrefix = prefix
	}
}

// WithContextPrefix prefixes call-site attribute keys.
func WithContextPrefix(prefix string) GELFOption {
	return func(f *GELF) {
		f.contextPrefix = prefix
	}
}

// WithMaxLength limits the length of every field.
func WithMaxLength(n int) GELFOption {
	return func(f *GELF) {
		if n > 0 {
			f.maxLength = n
		}
	}
}

// NewGELF creates a GELF formatter.
func NewGELF(opts ...GELFOption) *GELF {
	f := &GELF{
		norm:          NewNormalizer(),
		systemName:    hostname(),
		contextPrefix: "ctxt_",
		maxLength:     DefaultGELFMaxLength,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *GELF) SystemName() string { return f.systemName }
func (f *GELF) ExtraPrefix() string { return f.extraPrefix }
func (f *GELF) ContextPrefix() string { return f.contextPrefix }
func (f *GELF) MaxLength() int { return f.maxLength }

// Message returns the GELF fields of a record.
func (f *GELF) Message(rec logger.Record) map[string]any {
	msg := map[string]any{
		"version":   "1.1",
		"host":      f.systemName,
		"timestamp": float64(rec.Time.UnixMicro()) / 1e6,
		"level":     logger.SyslogSeverity(rec.Level),
		"_channel":  rec.Channel,
	}

	short := rec.Message
	if i := strings.IndexByte(short, '\n'); i >= 0 {
		msg["full_message"] = f.truncate(short)
		short = short[:i]
	}
	msg["short_message"] = f.truncate(short)

	for k, v := range f.norm.Attrs(rec.Extra) {
		msg["_"+f.extraPrefix+k] = f.field(v)
	}
	for k, v := range f.norm.Attrs(rec.Attrs) {
		msg["_"+f.contextPrefix+k] = f.field(v)
	}
	return msg
}

// Format renders one message as JSON.
func (f *GELF) Format(rec logger.Record) ([]byte, error) {
	out, err := encodeOrdered([]string{"version", "host", "short_message", "full_message", "timestamp", "level"}, f.Message(rec))
	if err != nil {
		return nil, fmt.Errorf("gelf: %w", err)
	}
	return out, nil
}

// FormatBatch renders the messages as a JSON array.
func (f *GELF) FormatBatch(recs []logger.Record) ([]byte, error) {
	return encodeBatch(recs, f.Format)
}

func (f *GELF) field(v any) any {
	v = toScalar(v)
	if s, ok := v.(string); ok {
		return f.truncate(s)
	}
	return v
}

func (f *GELF) truncate(s string) string {
	if len(s) <= f.maxLength {
		return s
	}
	return s[:f.maxLength]
}
