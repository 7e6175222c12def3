package formatter

import (
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Scalar flattens every context and extra value to a scalar: nested values
// are replaced by their JSON text. The result is encoded as a JSON object.
type Scalar struct {
	norm *Normalizer
}

// NewScalar creates a Scalar formatter. Empty layout keeps SimpleDate.
func NewScalar(dateFormat string) *Scalar {
	return &Scalar{norm: NewNormalizer(WithDateFormat(dateFormat))}
}

func (f *Scalar) DateFormat() string { return f.norm.DateFormat() }

// Scalars returns the flattened record.
func (f *Scalar) Scalars(rec logger.Record) map[string]any {
	m := f.norm.Normalize(rec)
	for _, key := range []string{"context", "extra"} {
		section, _ := m[key].(map[string]any)
		for k, v := range section {
			section[k] = toScalar(v)
		}
	}
	return m
}

// Format renders one record.
func (f *Scalar) Format(rec logger.Record) ([]byte, error) {
	return encodeOrdered(recordKeys, f.Scalars(rec))
}

// FormatBatch renders records as a JSON array.
func (f *Scalar) FormatBatch(recs []logger.Record) ([]byte, error) {
	return encodeBatch(recs, f.Format)
}

func toScalar(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v
	}
	return stringify(v)
}
