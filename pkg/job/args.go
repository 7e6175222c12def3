package job

import (
	"encoding/json"
	"time"
)

// RecordKind is the River job kind of queued log records.
const RecordKind = "log_record"

// RecordArgs carries one log record to a worker process.
type RecordArgs struct {
	Time      time.Time       `json:"time"`
	Channel   string          `json:"channel"`
	LevelName string          `json:"level_name"`
	Message   string          `json:"message"`
	Formatted string          `json:"formatted,omitempty"`
	Context   json.RawMessage `json:"context,omitempty"`
	Extra     json.RawMessage `json:"extra,omitempty"`
	Level     int             `json:"level"`
}

// Kind implements river.JobArgs.
func (RecordArgs) Kind() string { return RecordKind }
