package internal

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
	"github.com/dmitrymomot/slogfactory/pkg/processor"
)

// DefaultProcessorFactories returns the built-in processor types.
func DefaultProcessorFactories() map[string]Factory[logger.Processor] {
	return map[string]Factory[logger.Processor]{
		"uid":               uidProcessorFactory,
		"tag":               tagProcessorFactory,
		"hostname":          hostnameProcessorFactory,
		"process_id":        processIDProcessorFactory,
		"memory_usage":      memoryUsageProcessorFactory,
		"memory_peak_usage": memoryPeakUsageProcessorFactory,
		"placeholder":       placeholderProcessorFactory,
		"introspection":     introspectionProcessorFactory,
		"load_average":      loadAverageProcessorFactory,
		"git":               gitProcessorFactory,
		"trace":             traceProcessorFactory,
		"context":           contextProcessorFactory,
	}
}

func uidProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	length, err := intOpt(opts, "length", processor.DefaultUIDLength)
	if err != nil {
		return nil, err
	}
	if err := processor.ValidateUIDLength(length); err != nil {
		return nil, notCreated(err)
	}
	return processor.NewUID(length), nil
}

// tagProcessorFactory accepts tags as a list, a single string or a map;
// map entries become "key:value" tags sorted by key.
func tagProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	v, ok := opts["tags"]
	if !ok || v == nil {
		return processor.NewTag(), nil
	}
	if m, err := toOptions(v); err == nil {
		tags := make([]string, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			tags = append(tags, k+":"+cast.ToString(m[k]))
		}
		return processor.NewTag(tags...), nil
	}
	tags, err := stringSliceOpt(opts, "tags")
	if err != nil {
		return nil, err
	}
	return processor.NewTag(tags...), nil
}

func hostnameProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	if _, err := optionalOptions(options); err != nil {
		return nil, err
	}
	return processor.NewHostname(), nil
}

func processIDProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	if _, err := optionalOptions(options); err != nil {
		return nil, err
	}
	return processor.NewProcessID(), nil
}

func memoryOptions(options any) (realUsage, formatting bool, err error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return false, false, err
	}
	if realUsage, err = boolOpt(opts, "real_usage", true); err != nil {
		return false, false, err
	}
	if formatting, err = boolOpt(opts, "use_formatting", true); err != nil {
		return false, false, err
	}
	return realUsage, formatting, nil
}

func memoryUsageProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	realUsage, formatting, err := memoryOptions(options)
	if err != nil {
		return nil, err
	}
	return processor.NewMemoryUsage(realUsage, formatting), nil
}

func memoryPeakUsageProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	realUsage, formatting, err := memoryOptions(options)
	if err != nil {
		return nil, err
	}
	return processor.NewMemoryPeakUsage(realUsage, formatting), nil
}

func placeholderProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	df, err := stringOpt(opts, "date_format", "")
	if err != nil {
		return nil, err
	}
	removeUsed, err := boolOpt(opts, "remove_used_context_fields", false)
	if err != nil {
		return nil, err
	}
	return processor.NewPlaceholder(df, removeUsed), nil
}

func introspectionProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, err := levelOpt(opts, "level", logger.LevelDebug)
	if err != nil {
		return nil, err
	}
	skipFunctions, err := stringSliceOpt(opts, "skip_functions")
	if err != nil {
		return nil, err
	}
	skipFrames, err := intOpt(opts, "skip_frames", 0)
	if err != nil {
		return nil, err
	}
	return processor.NewIntrospection(level, skipFunctions, skipFrames), nil
}

func loadAverageProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	minutes, err := intOpt(opts, "avg_system_load", 1)
	if err != nil {
		return nil, err
	}
	p, err := processor.NewLoadAverage(minutes)
	if err != nil {
		return nil, notCreated(err)
	}
	return p, nil
}

func gitProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, err := levelOpt(opts, "level", logger.LevelDebug)
	if err != nil {
		return nil, err
	}
	path, err := stringOpt(opts, "path", "")
	if err != nil {
		return nil, err
	}
	return processor.NewGit(level, path), nil
}

func traceProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	if _, err := optionalOptions(options); err != nil {
		return nil, err
	}
	return processor.NewTrace(), nil
}

// contextProcessorFactory only takes Go values: extractors is a
// logger.ContextExtractor or a slice of them.
func contextProcessorFactory(_ *Container, _ string, options any) (logger.Processor, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	v, err := requireKey(opts, "extractors")
	if err != nil {
		return nil, err
	}
	switch e := v.(type) {
	case logger.ContextExtractor:
		return processor.NewContext(e), nil
	case func(context.Context) (slog.Attr, bool):
		return processor.NewContext(e), nil
	case []logger.ContextExtractor:
		return processor.NewContext(e...), nil
	}
	list, ok := toSlice(v)
	if !ok {
		return nil, notCreatedf("extractors must be context extractors, got %T", v)
	}
	extractors := make([]logger.ContextExtractor, 0, len(list))
	for _, item := range list {
		switch e := item.(type) {
		case logger.ContextExtractor:
			extractors = append(extractors, e)
		case func(context.Context) (slog.Attr, bool):
			extractors = append(extractors, e)
		default:
			return nil, notCreatedf("extractors must be context extractors, got %T", item)
		}
	}
	return processor.NewContext(extractors...), nil
}
