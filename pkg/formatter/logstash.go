package formatter

import (
	"errors"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// ErrApplicationNameRequired is returned when a Logstash formatter is built without an application name.
var ErrApplicationNameRequired = errors.New("formatter: application name is required")

// LogstashDate is the timestamp layout expected by Logstash.
const LogstashDate = "2006-01-02T15:04:05.000000Z07:00"

// Logstash renders records in the Logstash JSON event format (v1).
type Logstash struct {
	norm            *Normalizer
	applicationName string
	systemName      string
	extraKey        string
	contextKey      string
}

// LogstashOption configures a Logstash formatter.
type LogstashOption func(*Logstash)

// WithSystemName overrides the host name reported in events.
func WithSystemName(name string) LogstashOption {
	return func(f *Logstash) {
		if name != "" {
			f.systemName = name
		}
	}
}

// WithExtraKey sets the key holding processor attributes.
func WithExtraKey(key string) LogstashOption {
	return func(f *Logstash) {
		if key != "" {
			f.extraKey = key
		}
	}
}

// WithContextKey sets the key holding call-site attributes.
func WithContextKey(key string) LogstashOption {
	return func(f *Logstash) {
		if key != "" {
			f.contextKey = key
		}
	}
}

// NewLogstash creates a Logstash formatter for the given application.
func NewLogstash(applicationName string, opts ...LogstashOption) (*Logstash, error) {
	if applicationName == "" {
		return nil, ErrApplicationNameRequired
	}
	f := &Logstash{
		norm:            NewNormalizer(WithDateFormat(LogstashDate)),
		applicationName: applicationName,
		systemName:      hostname(),
		extraKey:        "extra",
		contextKey:      "context",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Logstash) ApplicationName() string { return f.applicationName }
func (f *Logstash) SystemName() string { return f.systemName }
func (f *Logstash) ExtraKey() string { return f.extraKey }
func (f *Logstash) ContextKey() string { return f.contextKey }

// Format renders one event followed by a newline.
func (f *Logstash) Format(rec logger.Record) ([]byte, error) {
	event := map[string]any{
		"@timestamp":    rec.Time.Format(LogstashDate),
		"@version":      1,
		"host":          f.systemName,
		"message":       rec.Message,
		"channel":       rec.Channel,
		"level":         rec.LevelName(),
		"level_code": logger.LevelValue(rec.Level),
		"type":          f.applicationName,
	}
	if extra := f.norm.Attrs(rec.Extra); len(extra) > 0 {
		event[f.extraKey] = extra
	}
	if context := f.norm.Attrs(rec.Attrs); len(context) > 0 {
		event[f.contextKey] = context
	}
	out, err := encodeOrdered([]string{"@timestamp", "@version", "host", "message", "type", "channel", "level"}, event)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// FormatBatch renders one event per line.
func (f *Logstash) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinLines(recs, f.Format)
}

func joinLines(recs []logger.Record, format func(logger.Record) ([]byte, error)) ([]byte, error) {
	var out []byte
	for _, rec := range recs {
		line, err := format(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, line...)
	}
	return out, nil
}
