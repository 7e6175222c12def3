package internal

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Options is an untyped option map as produced by the YAML decoder.
type Options = map[string]any

// toOptions converts factory input into an option map.
// Anything but a map fails, nil included.
func toOptions(v any) (Options, error) {
	switch m := v.(type) {
	case Options:
		return m, nil
	case map[string]string:
		out := make(Options, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil
	case map[any]any:
		out := make(Options, len(m))
		for k, val := range m {
			out[cast.ToString(k)] = val
		}
		return out, nil
	}
	return nil, notCreated(ErrOptionsNotArray)
}

// optionalOptions is toOptions for factories whose keys are all optional.
func optionalOptions(v any) (Options, error) {
	if v == nil {
		return Options{}, nil
	}
	return toOptions(v)
}

// toSlice reports whether v is a sequence and returns its elements.
func toSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func invalidOption(key string, err error) error {
	return fmt.Errorf("%w: invalid %s: %w", ErrServiceNotCreated, key, err)
}

func requireKey(opts Options, key string) (any, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return nil, requiredError(key)
	}
	return v, nil
}

func requireString(opts Options, key string) (string, error) {
	v, err := requireKey(opts, key)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", invalidOption(key, err)
	}
	if s == "" {
		return "", requiredError(key)
	}
	return s, nil
}

func stringOpt(opts Options, key, def string) (string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", invalidOption(key, err)
	}
	return s, nil
}

func boolOpt(opts Options, key string, def bool) (bool, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, invalidOption(key, err)
	}
	return b, nil
}

func intOpt(opts Options, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, invalidOption(key, err)
	}
	return n, nil
}

func levelOpt(opts Options, key string, def slog.Level) (slog.Level, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	level, err := logger.ParseLevel(v)
	if err != nil {
		return 0, invalidOption(key, err)
	}
	return level, nil
}

func durationOpt(opts Options, key string, def time.Duration) (time.Duration, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	d, err := toDuration(v)
	if err != nil {
		return 0, invalidOption(key, err)
	}
	return d, nil
}

func stringSliceOpt(opts Options, key string) ([]string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, invalidOption(key, err)
	}
	return out, nil
}

// levelAndBubble reads the keys shared by every handler.
func levelAndBubble(opts Options) (slog.Level, bool, error) {
	level, err := levelOpt(opts, "level", logger.LevelDebug)
	if err != nil {
		return 0, false, err
	}
	bubble, err := boolOpt(opts, "bubble", true)
	if err != nil {
		return 0, false, err
	}
	return level, bubble, nil
}

// isEnabled reads the "enabled" flag of a nested config, true when absent.
func isEnabled(opts Options) (bool, error) {
	return boolOpt(opts, "enabled", true)
}

// toDuration accepts time.Duration values, Go duration strings and numbers of seconds.
func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed, nil
		}
	}
	secs, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %v", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	levelType    = reflect.TypeFor[slog.Level]()
	locationType = reflect.TypeFor[*time.Location]()
	fileModeType = reflect.TypeFor[os.FileMode]()
)

func decodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case durationType:
		return toDuration(data)
	case levelType:
		return logger.ParseLevel(data)
	case locationType:
		if loc, ok := data.(*time.Location); ok {
			return loc, nil
		}
		return time.LoadLocation(cast.ToString(data))
	case fileModeType:
		return toFileMode(data)
	}
	return data, nil
}

// toFileMode reads strings as octal ("0644", "644") and numbers as is.
func toFileMode(v any) (os.FileMode, error) {
	switch m := v.(type) {
	case os.FileMode:
		return m, nil
	case string:
		n, err := strconv.ParseUint(m, 8, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid file permission %q", m)
		}
		return os.FileMode(n), nil
	}
	n, err := cast.ToUint32E(v)
	if err != nil {
		return 0, err
	}
	return os.FileMode(n), nil
}

// decode fills out from an option map. Fields keep their values when the
// key is absent, so callers pass a struct prefilled with defaults.
func decode(input Options, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return notCreated(err)
	}
	if err := dec.Decode(input); err != nil {
		return notCreated(err)
	}
	return nil
}
