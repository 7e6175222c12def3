package formatter

import (
	"strings"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Fluentd renders records as [tag, unix time, payload] triples for the
// fluentd in_forward JSON protocol. The tag is the channel, optionally
// suffixed with the lower-case level name.
type Fluentd struct {
	norm     *Normalizer
	levelTag bool
}

// NewFluentd creates a Fluentd formatter.
func NewFluentd(levelTag bool) *Fluentd {
	return &Fluentd{norm: NewNormalizer(), levelTag: levelTag}
}

func (f *Fluentd) LevelTag() bool { return f.levelTag }

// Format renders one record.
func (f *Fluentd) Format(rec logger.Record) ([]byte, error) {
	tag := rec.Channel
	payload := map[string]any{
		"message": rec.Message,
		"context": f.norm.Attrs(rec.Attrs),
		"extra":   f.norm.Attrs(rec.Extra),
	}
	if f.levelTag {
		tag += "." + strings.ToLower(rec.LevelName())
	} else {
		payload["level"] = logger.LevelValue(rec.Level)
		payload["level_name"] = rec.LevelName()
	}

	body, err := encodeOrdered([]string{"message", "context", "extra", "level", "level_name"}, payload)
	if err != nil {
		return nil, err
	}
	head, err := marshal([]any{tag, rec.Time.Unix()})
	if err != nil {
		return nil, err
	}
	out := append(head[:len(head)-1], ',')
	out = append(out, body...)
	return append(out, ']'), nil
}

// FormatBatch renders one record per line.
func (f *Fluentd) FormatBatch(recs []logger.Record) ([]byte, error) {
	return joinLines(recs, func(rec logger.Record) ([]byte, error) {
		out, err := f.Format(rec)
		return append(out, '\n'), err
	})
}
