package formatter

import (
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Date layouts shared by the formatters.
const (
	// SimpleDate is RFC 3339 with microseconds.
	SimpleDate = "2006-01-02T15:04:05.000000-07:00"
	// LineDate is the default layout of the line formatter.
	LineDate = "2006-01-02T15:04:05-07:00"
)

// Normalization limits.
const (
	DefaultMaxNormalizeDepth     = 9
	DefaultMaxNormalizeItemCount = 1000
)

// recordKeys is the field order of normalized records.
var recordKeys = []string{"message", "context", "level", "level_name", "channel", "datetime", "extra"}

// Normalizer turns records into plain maps, slices and scalars that encode cleanly.
// It is also a Formatter producing one JSON object per record.
type Normalizer struct {
	dateFormat string
	maxDepth   int
	maxItems   int
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithDateFormat sets the layout used for timestamps and time values.
func WithDateFormat(layout string) NormalizerOption {
	return func(n *Normalizer) {
		if layout != "" {
			n.dateFormat = layout
		}
	}
}

// WithMaxNormalizeDepth limits the nesting depth of normalized values.
func WithMaxNormalizeDepth(depth int) NormalizerOption {
	return func(n *Normalizer) {
		if depth > 0 {
			n.maxDepth = depth
		}
	}
}

// WithMaxNormalizeItemCount limits the number of items normalized per map or slice.
func WithMaxNormalizeItemCount(count int) NormalizerOption {
	return func(n *Normalizer) {
		if count > 0 {
			n.maxItems = count
		}
	}
}

// NewNormalizer creates a Normalizer. Default date format: SimpleDate.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		dateFormat: SimpleDate,
		maxDepth:   DefaultMaxNormalizeDepth,
		maxItems:   DefaultMaxNormalizeItemCount,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) DateFormat() string { return n.dateFormat }
func (n *Normalizer) MaxNormalizeDepth() int { return n.maxDepth }
func (n *Normalizer) MaxNormalizeItems() int { return n.maxItems }

// Format encodes the normalized record as a JSON object.
func (n *Normalizer) Format(rec logger.Record) ([]byte, error) {
	return encodeOrdered(recordKeys, n.Normalize(rec))
}

// FormatBatch encodes the normalized records as a JSON array.
func (n *Normalizer) FormatBatch(recs []logger.Record) ([]byte, error) {
	return encodeBatch(recs, n.Format)
}

// Normalize returns the record as a map keyed by message, context, level,
// level_name, channel, datetime and extra.
func (n *Normalizer) Normalize(rec logger.Record) map[string]any {
	return map[string]any{
		"message":    rec.Message,
		"context":    n.Attrs(rec.Attrs),
		"level":      logger.LevelValue(rec.Level),
		"level_name": rec.LevelName(),
		"channel":    rec.Channel,
		"datetime":   rec.Time.Format(n.dateFormat),
		"extra":      n.Attrs(rec.Extra),
	}
}

// Attrs normalizes a list of attributes into a map.
func (n *Normalizer) Attrs(attrs []slog.Attr) map[string]any {
	return n.attrs(attrs, 0)
}

// Value normalizes a single slog value.
func (n *Normalizer) Value(v slog.Value) any {
	return n.value(v, 0)
}

func (n *Normalizer) attrs(attrs []slog.Attr, depth int) map[string]any {
	out := make(map[string]any, len(attrs))
	count := 0
	for _, a := range attrs {
		if a.Equal(slog.Attr{}) {
			continue
		}
		v := a.Value.Resolve()
		// Empty-key groups are inlined, as slog does.
		if a.Key == "" && v.Kind() == slog.KindGroup {
			for k, nested := range n.attrs(v.Group(), depth) {
				out[k] = nested
			}
			continue
		}
		if count >= n.maxItems {
			out["..."] = fmt.Sprintf("Over %d items (%d total), aborting normalization", n.maxItems, len(attrs))
			break
		}
		out[a.Key] = n.value(v, depth+1)
		count++
	}
	return out
}

func (n *Normalizer) value(v slog.Value, depth int) any {
	if depth > n.maxDepth {
		return fmt.Sprintf("Over %d levels deep, aborting normalization", n.maxDepth)
	}

	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return normalizeFloat(v.Float64())
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(n.dateFormat)
	case slog.KindGroup:
		return n.attrs(v.Group(), depth)
	default:
		return n.any(v.Any(), depth)
	}
}

func (n *Normalizer) any(v any, depth int) any {
	if depth > n.maxDepth {
		return fmt.Sprintf("Over %d levels deep, aborting normalization", n.maxDepth)
	}

	switch val := v.(type) {
	case nil:
		return nil
	case error:
		return n.normalizeError(val)
	case time.Time:
		return val.Format(n.dateFormat)
	case []byte:
		return string(val)
	case json.Marshaler:
		return val
	case fmt.Stringer:
		return val.String()
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return fmt.Sprintf("[unmarshalable %T]", val)
		}
		return string(text)
	case float64:
		return normalizeFloat(val)
	case float32:
		return normalizeFloat(float64(val))
	case slog.Value:
		return n.value(val, depth)
	case []slog.Attr:
		return n.attrs(val, depth)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return n.any(rv.Elem().Interface(), depth)
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		count := 0
		for iter.Next() {
			if count >= n.maxItems {
				out["..."] = fmt.Sprintf("Over %d items (%d total), aborting normalization", n.maxItems, rv.Len())
				break
			}
			out[fmt.Sprint(iter.Key().Interface())] = n.any(iter.Value().Interface(), depth+1)
			count++
		}
		return out
	case reflect.Slice, reflect.Array:
		size := min(rv.Len(), n.maxItems)
		out := make([]any, 0, size)
		for i := range size {
			out = append(out, n.any(rv.Index(i).Interface(), depth+1))
		}
		if rv.Len() > n.maxItems {
			out = append(out, fmt.Sprintf("Over %d items (%d total), aborting normalization", n.maxItems, rv.Len()))
		}
		return out
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("[%T]", v)
	default:
		return v
	}
}

func (n *Normalizer) normalizeError(err error) map[string]any {
	out := map[string]any{
		"class":   fmt.Sprintf("%T", err),
		"message": err.Error(),
	}
	var causes []any
	for cause := unwrapOne(err); cause != nil; cause = unwrapOne(cause) {
		causes = append(causes, map[string]any{
			"class":   fmt.Sprintf("%T", cause),
			"message": cause.Error(),
		})
		if len(causes) >= n.maxDepth {
			break
		}
	}
	if len(causes) > 0 {
		out["previous"] = causes
	}
	return out
}

func unwrapOne(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return nil
}

func normalizeFloat(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	default:
		return f
	}
}
