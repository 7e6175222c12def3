package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Severity levels. Debug, Info, Warning and Error match the slog constants;
// the rest sit between and above them so that ordering is preserved.
const (
	LevelDebug     = slog.LevelDebug
	LevelInfo      = slog.LevelInfo
	LevelNotice    = slog.Level(2)
	LevelWarning   = slog.LevelWarn
	LevelError     = slog.LevelError
	LevelCritical  = slog.Level(12)
	LevelAlert     = slog.Level(16)
	LevelEmergency = slog.Level(20)
)

// ErrInvalidLevel is returned when a value cannot be mapped to a level.
var ErrInvalidLevel = errors.New("logger: invalid level")

// Levels lists every named level in ascending order.
var Levels = []slog.Level{
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelAlert,
	LevelEmergency,
}

var levelNames = map[slog.Level]string{
	LevelDebug:     "DEBUG",
	LevelInfo:      "INFO",
	LevelNotice:    "NOTICE",
	LevelWarning:   "WARNING",
	LevelError:     "ERROR",
	LevelCritical:  "CRITICAL",
	LevelAlert:     "ALERT",
	LevelEmergency: "EMERGENCY",
}

// Legacy numeric level codes accepted in configuration.
var levelCodes = map[int]slog.Level{
	100: LevelDebug,
	200: LevelInfo,
	250: LevelNotice,
	300: LevelWarning,
	400: LevelError,
	500: LevelCritical,
	550: LevelAlert,
	600: LevelEmergency,
}

// LevelName returns the upper-case name of a level.
// Levels between the named ones are rendered relative to the closest lower name, e.g. "INFO+1".
func LevelName(level slog.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	base := LevelDebug
	for _, l := range Levels {
		if l <= level {
			base = l
		}
	}
	if level < base {
		return levelNames[base] + strconv.Itoa(int(level-base))
	}
	return levelNames[base] + "+" + strconv.Itoa(int(level-base))
}

// LevelCode returns the legacy numeric code of a named level, or 0.
func LevelCode(level slog.Level) int {
	for code, l := range levelCodes {
		if l == level {
			return code
		}
	}
	return 0
}

// ParseLevel converts a configuration value into a level.
// Accepted forms: level names ("warning", "WARN", "critical"), legacy codes (100..600),
// plain slog numbers (-4, 0, 4, 8) and slog.Level/slog.Leveler values.
func ParseLevel(v any) (slog.Level, error) {
	switch val := v.(type) {
	case slog.Level:
		return val, nil
	case slog.Leveler:
		return val.Level(), nil
	case string:
		return parseLevelString(val)
	case int:
		return levelFromInt(val), nil
	case int8:
		return levelFromInt(int(val)), nil
	case int16:
		return levelFromInt(int(val)), nil
	case int32:
		return levelFromInt(int(val)), nil
	case int64:
		return levelFromInt(int(val)), nil
	case uint:
		return levelFromInt(int(val)), nil
	case uint32:
		return levelFromInt(int(val)), nil
	case uint64:
		return levelFromInt(int(val)), nil
	case float64:
		return levelFromInt(int(val)), nil
	case float32:
		return levelFromInt(int(val)), nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidLevel, v)
	}
}

// MustParseLevel is like ParseLevel but panics on invalid input.
func MustParseLevel(v any) slog.Level {
	l, err := ParseLevel(v)
	if err != nil {
		panic(err)
	}
	return l
}

func parseLevelString(s string) (slog.Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "NOTICE":
		return LevelNotice, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR", "ERR":
		return LevelError, nil
	case "CRITICAL", "CRIT":
		return LevelCritical, nil
	case "ALERT":
		return LevelAlert, nil
	case "EMERGENCY", "EMERG":
		return LevelEmergency, nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		return levelFromInt(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

func levelFromInt(n int) slog.Level {
	if l, ok := levelCodes[n]; ok {
		return l
	}
	return slog.Level(n)
}

// SyslogSeverity maps a level to its RFC 5424 severity (0 emergency .. 7 debug).
func SyslogSeverity(level slog.Level) int {
	switch {
	case level >= LevelEmergency:
		return 0
	case level >= LevelAlert:
		return 1
	case level >= LevelCritical:
		return 2
	case level >= LevelError:
		return 3
	case level >= LevelWarning:
		return 4
	case level >= LevelNotice:
		return 5
	case level >= LevelInfo:
		return 6
	default:
		return 7
	}
}

// LevelValue returns the legacy numeric code for named levels and the slog number otherwise.
func LevelValue(level slog.Level) int {
	if code := LevelCode(level); code != 0 {
		return code
	}
	return int(level)
}
