package logger

import (
	"log/slog"
	"slices"
	"time"
)

// Record is a single log entry travelling through processors, handlers and formatters.
type Record struct {
	Time    time.Time
	Message string
	Channel string
	// Attrs holds the attributes supplied at the call site.
	Attrs []slog.Attr
	// Extra holds attributes added by processors.
	Extra []slog.Attr
	Level slog.Level
	PC    uintptr
}

// NewRecord creates a record from call-site arguments.
// Arguments follow the slog convention: alternating key/value pairs or slog.Attr values.
func NewRecord(t time.Time, channel string, level slog.Level, msg string, args ...any) Record {
	rec := Record{
		Time:    t,
		Channel: channel,
		Level:   level,
		Message: msg,
	}
	if len(args) > 0 {
		sr := slog.NewRecord(t, level, msg, 0)
		sr.Add(args...)
		rec.Attrs = make([]slog.Attr, 0, sr.NumAttrs())
		sr.Attrs(func(a slog.Attr) bool {
			rec.Attrs = append(rec.Attrs, a)
			return true
		})
	}
	return rec
}

// FromSlog converts a slog record into a Record bound to the given channel.
func FromSlog(channel string, sr slog.Record) Record {
	rec := Record{
		Time:    sr.Time,
		Channel: channel,
		Level:   sr.Level,
		Message: sr.Message,
		PC:      sr.PC,
		Attrs:   make([]slog.Attr, 0, sr.NumAttrs()),
	}
	sr.Attrs(func(a slog.Attr) bool {
		rec.Attrs = append(rec.Attrs, a)
		return true
	})
	return rec
}

// Slog converts the record back into a slog record.
// The channel and the processor attributes are carried as "channel" and an "extra" group.
func (r Record) Slog() slog.Record {
	sr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	sr.AddAttrs(r.Attrs...)
	if r.Channel != "" {
		sr.AddAttrs(slog.String("channel", r.Channel))
	}
	if len(r.Extra) > 0 {
		sr.AddAttrs(slog.Attr{Key: "extra", Value: slog.GroupValue(r.Extra...)})
	}
	return sr
}

// LevelName returns the upper-case level name of the record.
func (r Record) LevelName() string {
	return LevelName(r.Level)
}

// AddExtra appends processor attributes.
func (r *Record) AddExtra(attrs ...slog.Attr) {
	r.Extra = append(r.Extra, attrs...)
}

// Attr returns the first call-site attribute with the given key.
func (r Record) Attr(key string) (slog.Attr, bool) {
	for _, a := range r.Attrs {
		if a.Key == key {
			return a, true
		}
	}
	return slog.Attr{}, false
}

// ExtraAttr returns the first processor attribute with the given key.
func (r Record) ExtraAttr(key string) (slog.Attr, bool) {
	for _, a := range r.Extra {
		if a.Key == key {
			return a, true
		}
	}
	return slog.Attr{}, false
}

// Clone returns a copy that does not share attribute storage with r.
func (r Record) Clone() Record {
	r.Attrs = slices.Clone(r.Attrs)
	r.Extra = slices.Clone(r.Extra)
	return r
}
