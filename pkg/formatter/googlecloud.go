package formatter

import (
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// GoogleCloudLogging renders records as structured payloads understood by
// the Cloud Logging agent: "severity" and "time" replace the level fields.
type GoogleCloudLogging struct {
	json *JSON
}

// NewGoogleCloudLogging creates the formatter. Empty layout means RFC 3339 with nanoseconds.
func NewGoogleCloudLogging(dateFormat string) *GoogleCloudLogging {
	if dateFormat == "" {
		dateFormat = time.RFC3339Nano
	}
	return &GoogleCloudLogging{
		json: NewJSON(
			WithBatchMode(BatchModeNewlines),
			WithNormalizer(NewNormalizer(WithDateFormat(dateFormat))),
		),
	}
}

func (f *GoogleCloudLogging) DateFormat() string { return f.json.DateFormat() }

// Format renders one record followed by a newline.
func (f *GoogleCloudLogging) Format(rec logger.Record) ([]byte, error) {
	out, err := f.encode(rec)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// FormatBatch renders one record per line.
func (f *GoogleCloudLogging) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinLines(recs, f.Format)
}

func (f *GoogleCloudLogging) encode(rec logger.Record) ([]byte, error) {
	m := f.json.norm.Normalize(rec)
	m["severity"] = rec.LevelName()
	m["time"] = m["datetime"]
	delete(m, "level")
	delete(m, "level_name")
	delete(m, "datetime")
	return encodeOrdered([]string{"message", "context", "severity", "channel", "time", "extra"}, m)
}
