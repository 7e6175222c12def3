package formatter

import (
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// LogglyDate is the timestamp layout accepted by Loggly.
const LogglyDate = "2006-01-02T15:04:05.000000-0700"

// Loggly is a JSON formatter emitting newline separated batches with a
// "timestamp" field instead of "datetime".
type Loggly struct {
	json *JSON
}

// NewLoggly creates a Loggly formatter.
func NewLoggly() *Loggly {
	return &Loggly{json: NewJSON(WithBatchMode(BatchModeNewlines), WithAppendNewline(false))}
}

func (f *Loggly) BatchMode() BatchMode { return f.json.BatchMode() }

// Format renders one record.
func (f *Loggly) Format(rec logger.Record) ([]byte, error) {
	m := f.json.norm.Normalize(rec)
	m["timestamp"] = rec.Time.Format(LogglyDate)
	delete(m, "datetime")
	return encodeOrdered(recordKeys, m)
}

// FormatBatch renders one record per line.
func (f *Loggly) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinWith(recs, f.Format, '\n')
}

// Logmatic is a JSON formatter adding host, application and marker fields.
type Logmatic struct {
	json     *JSON
	hostname string
	appName  string
}

// NewLogmatic creates a Logmatic formatter. Empty host defaults to the machine name.
func NewLogmatic(host, appName string) *Logmatic {
	if host == "" {
		host = hostname()
	}
	return &Logmatic{
		json:     NewJSON(WithBatchMode(BatchModeNewlines), WithAppendNewline(false)),
		hostname: host,
		appName:  appName,
	}
}

func (f *Logmatic) Hostname() string { return f.hostname }
func (f *Logmatic) AppName() string { return f.appName }

// Format renders one record.
func (f *Logmatic) Format(rec logger.Record) ([]byte, error) {
	m := f.json.norm.Normalize(rec)
	m["hostname"] = f.hostname
	if f.appName != "" {
		m["appname"] = f.appName
	}
	m["@marker"] = []string{"sourcecode", "go"}
	return encodeOrdered(recordKeys, m)
}

// FormatBatch renders one record per line.
func (f *Logmatic) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinWith(recs, f.Format, '\n')
}

func joinWith(recs []logger.Record, format func(logger.Record) ([]byte, error), sep byte) ([]byte, error) {
	var out []byte
	for i, rec := range recs {
		line, err := format(rec)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, line...)
	}
	return out, nil
}
