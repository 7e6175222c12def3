package formatter

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// BatchMode selects how JSON renders several records at once.
type BatchMode int

const (
	// BatchModeJSON renders a batch as one JSON array.
	BatchModeJSON BatchMode = 1
	// BatchModeNewlines renders a batch as newline separated JSON objects.
	BatchModeNewlines BatchMode = 2
)

// JSON renders records as JSON objects.
type JSON struct {
	norm          *Normalizer
	batchMode     BatchMode
	appendNewline bool
	ignoreEmpty   bool
}

// JSONOption configures a JSON formatter.
type JSONOption func(*JSON)

// WithBatchMode sets the batch rendering mode.
func WithBatchMode(mode BatchMode) JSONOption {
	return func(f *JSON) {
		if mode == BatchModeJSON || mode == BatchModeNewlines {
			f.batchMode = mode
		}
	}
}

// WithAppendNewline controls the trailing newline after each record.
func WithAppendNewline(v bool) JSONOption {
	return func(f *JSON) {
		f.appendNewline = v
	}
}

// WithIgnoreEmptyContextAndExtra drops empty context and extra keys.
func WithIgnoreEmptyContextAndExtra(v bool) JSONOption {
	return func(f *JSON) {
		f.ignoreEmpty = v
	}
}

// WithNormalizer replaces the normalizer, e.g. to change the date format.
func WithNormalizer(n *Normalizer) JSONOption {
	return func(f *JSON) {
		if n != nil {
			f.norm = n
		}
	}
}

// NewJSON creates a JSON formatter.
// Defaults: BatchModeJSON, newline appended, SimpleDate timestamps.
func NewJSON(opts ...JSONOption) *JSON {
	f := &JSON{
		norm:          NewNormalizer(),
		batchMode:     BatchModeJSON,
		appendNewline: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *JSON) BatchMode() BatchMode { return f.batchMode }
func (f *JSON) AppendsNewline() bool { return f.appendNewline }
func (f *JSON) IgnoresEmptyContextAndExtra() bool { return f.ignoreEmpty }
func (f *JSON) DateFormat() string { return f.norm.DateFormat() }

// Format renders one record.
func (f *JSON) Format(rec logger.Record) ([]byte, error) {
	out, err := f.encode(rec)
	if err != nil {
		return nil, err
	}
	if f.appendNewline {
		out = append(out, '\n')
	}
	return out, nil
}

// FormatBatch renders records according to the batch mode.
func (f *JSON) FormatBatch(recs []logger.Record) ([]byte, error) {
	if f.batchMode == BatchModeNewlines {
		parts := make([][]byte, 0, len(recs))
		for _, rec := range recs {
			out, err := f.encode(rec)
			if err != nil {
				return nil, err
			}
			parts = append(parts, out)
		}
		return bytes.Join(parts, []byte("\n")), nil
	}
	return encodeBatch(recs, f.encode)
}

func (f *JSON) encode(rec logger.Record) ([]byte, error) {
	m := f.norm.Normalize(rec)
	if f.ignoreEmpty {
		dropEmpty(m, "context", "extra")
	}
	return encodeOrdered(recordKeys, m)
}

func dropEmpty(m map[string]any, keys ...string) {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok && len(v) == 0 {
			delete(m, k)
		}
	}
}

// encodeOrdered writes m as a JSON object with keys in the given order first,
// followed by any other keys sorted alphabetically.
func encodeOrdered(keys []string, m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	written := 0
	write := func(k string, v any) error {
		if written > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(k)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshal(v)
		if err != nil {
			return err
		}
		buf.Write(val)
		written++
		return nil
	}

	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if err := write(k, v); err != nil {
			return nil, err
		}
	}

	rest := make([]string, 0, len(m))
	for k := range m {
		if !slices.Contains(keys, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		if err := write(k, m[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeBatch renders records with format and joins them into a JSON array.
func encodeBatch(recs []logger.Record, format func(logger.Record) ([]byte, error)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range recs {
		out, err := format(rec)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(bytes.TrimRight(out, "\n"))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshal encodes v without HTML escaping and without the trailing newline.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
