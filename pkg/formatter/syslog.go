package formatter

import (
	"fmt"
	"os"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// SyslogDate is the RFC 5424 timestamp layout.
const SyslogDate = "2006-01-02T15:04:05.000000Z07:00"

const facilityUser = 1

// Syslog renders RFC 5424 lines: the syslog header followed by a line
// formatted body without its own date.
type Syslog struct {
	line            *Line
	applicationName string
	hostname        string
	pid             int
}

// NewSyslog creates a Syslog formatter. Empty application name renders as "-".
func NewSyslog(applicationName string) *Syslog {
	if applicationName == "" {
		applicationName = "-"
	}
	return &Syslog{
		line:            NewLine(WithFormat("%channel%.%level_name%: %message% %context% %extra%\n"), WithIgnoreEmpty(true)),
		applicationName: applicationName,
		hostname:        hostname(),
		pid:             os.Getpid(),
	}
}

func (f *Syslog) ApplicationName() string { return f.applicationName }

// Format renders one record.
func (f *Syslog) Format(rec logger.Record) ([]byte, error) {
	body, err := f.line.Format(rec)
	if err != nil {
		return nil, err
	}
	priority := facilityUser*8 + logger.SyslogSeverity(rec.Level)
	head := fmt.Sprintf("<%d>1 %s %s %s %d - - ", priority, rec.Time.Format(SyslogDate), f.hostname, f.applicationName, f.pid)
	return append([]byte(head), body...), nil
}

// FormatBatch concatenates the formatted records.
func (f *Syslog) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinLines(recs, f.Format)
}
