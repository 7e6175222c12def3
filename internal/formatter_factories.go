package internal

import (
	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultFormatterFactories returns the built-in formatter types.
func DefaultFormatterFactories() map[string]Factory[logger.Formatter] {
	return map[string]Factory[logger.Formatter]{
		"json":                 jsonFormatterFactory,
		"line":                 lineFormatterFactory,
		"normalizer":           normalizerFormatterFactory,
		"scalar":               scalarFormatterFactory,
		"html":                 htmlFormatterFactory,
		"markdown":             markdownFormatterFactory,
		"logstash":             logstashFormatterFactory,
		"gelf":                 gelfFormatterFactory,
		"google_cloud_logging": googleCloudLoggingFormatterFactory,
		"fluentd":              fluentdFormatterFactory,
		"loggly":               logglyFormatterFactory,
		"logmatic":             logmaticFormatterFactory,
		"syslog":               syslogFormatterFactory,
	}
}

func batchMode(opts Options) (formatter.BatchMode, error) {
	v, ok := opts["batch_mode"]
	if !ok || v == nil {
		return formatter.BatchModeJSON, nil
	}
	mode, err := stringOpt(opts, "batch_mode", "")
	if err != nil {
		return 0, err
	}
	switch mode {
	case "json", "1":
		return formatter.BatchModeJSON, nil
	case "newlines", "2":
		return formatter.BatchModeNewlines, nil
	}
	return 0, notCreatedf("batch_mode must be json or newlines, got %q", mode)
}

// normalizerFrom builds the normalizer shared by JSON based formatters.
func normalizerFrom(opts Options) (*formatter.Normalizer, error) {
	dateFormat, err := stringOpt(opts, "date_format", "")
	if err != nil {
		return nil, err
	}
	depth, err := intOpt(opts, "max_normalize_depth", formatter.DefaultMaxNormalizeDepth)
	if err != nil {
		return nil, err
	}
	count, err := intOpt(opts, "max_normalize_item_count", formatter.DefaultMaxNormalizeItemCount)
	if err != nil {
		return nil, err
	}
	return formatter.NewNormalizer(
		formatter.WithDateFormat(dateFormat),
		formatter.WithMaxNormalizeDepth(depth),
		formatter.WithMaxNormalizeItemCount(count),
	), nil
}

func jsonFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	mode, err := batchMode(opts)
	if err != nil {
		return nil, err
	}
	appendNewline, err := boolOpt(opts, "append_newline", true)
	if err != nil {
		return nil, err
	}
	ignoreEmpty, err := boolOpt(opts, "ignore_empty_context_and_extra", false)
	if err != nil {
		return nil, err
	}
	norm, err := normalizerFrom(opts)
	if err != nil {
		return nil, err
	}
	return formatter.NewJSON(
		formatter.WithBatchMode(mode),
		formatter.WithAppendNewline(appendNewline),
		formatter.WithIgnoreEmptyContextAndExtra(ignoreEmpty),
		formatter.WithNormalizer(norm),
	), nil
}

func lineFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	format, err := stringOpt(opts, "format", formatter.DefaultLineFormat)
	if err != nil {
		return nil, err
	}
	dateFormat, err := stringOpt(opts, "date_format", "")
	if err != nil {
		return nil, err
	}
	inline, err := boolOpt(opts, "allow_inline_line_breaks", false)
	if err != nil {
		return nil, err
	}
	ignoreEmpty, err := boolOpt(opts, "ignore_empty_context_and_extra", false)
	if err != nil {
		return nil, err
	}
	return formatter.NewLine(
		formatter.WithFormat(format),
		formatter.WithLineDateFormat(dateFormat),
		formatter.WithInlineLineBreaks(inline),
		formatter.WithIgnoreEmpty(ignoreEmpty),
	), nil
}

func normalizerFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	return normalizerFrom(opts)
}

func dateFormatOnly(options any) (string, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return "", err
	}
	return stringOpt(opts, "date_format", "")
}

func scalarFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	df, err := dateFormatOnly(options)
	if err != nil {
		return nil, err
	}
	return formatter.NewScalar(df), nil
}

func htmlFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	df, err := stringOpt(opts, "date_format", "")
	if err != nil {
		return nil, err
	}
	allowHTML, err := boolOpt(opts, "allow_html", false)
	if err != nil {
		return nil, err
	}
	return formatter.NewHTML(df, allowHTML), nil
}

func markdownFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	df, err := dateFormatOnly(options)
	if err != nil {
		return nil, err
	}
	return formatter.NewMarkdown(df), nil
}

func logstashFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := toOptions(options)
	if err != nil {
		return nil, err
	}
	app, err := requireString(opts, "application_name")
	if err != nil {
		return nil, err
	}
	systemName, err := stringOpt(opts, "system_name", "")
	if err != nil {
		return nil, err
	}
	extraKey, err := stringOpt(opts, "extra_key", "")
	if err != nil {
		return nil, err
	}
	contextKey, err := stringOpt(opts, "context_key", "")
	if err != nil {
		return nil, err
	}
	f, err := formatter.NewLogstash(app,
		formatter.WithSystemName(systemName),
		formatter.WithExtraKey(extraKey),
		formatter.WithContextKey(contextKey),
	)
	if err != nil {
		return nil, notCreated(err)
	}
	return f, nil
}

func gelfFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	systemName, err := stringOpt(opts, "system_name", "")
	if err != nil {
		return nil, err
	}
	maxLength, err := intOpt(opts, "max_length", formatter.DefaultGELFMaxLength)
	if err != nil {
		return nil, err
	}
	gelfOpts := []formatter.GELFOption{
		formatter.WithGELFSystemName(systemName),
		formatter.WithMaxLength(maxLength),
	}
	if _, ok := opts["extra_prefix"]; ok {
		prefix, err := stringOpt(opts, "extra_prefix", "")
		if err != nil {
			return nil, err
		}
		gelfOpts = append(gelfOpts, formatter.WithExtraPrefix(prefix))
	}
	if _, ok := opts["context_prefix"]; ok {
		prefix, err := stringOpt(opts, "context_prefix", "")
		if err != nil {
			return nil, err
		}
		gelfOpts = append(gelfOpts, formatter.WithContextPrefix(prefix))
	}
	return formatter.NewGELF(gelfOpts...), nil
}

func googleCloudLoggingFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	df, err := dateFormatOnly(options)
	if err != nil {
		return nil, err
	}
	return formatter.NewGoogleCloudLogging(df), nil
}

func fluentdFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	levelTag, err := boolOpt(opts, "level_tag", false)
	if err != nil {
		return nil, err
	}
	return formatter.NewFluentd(levelTag), nil
}

func logglyFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	if _, err := optionalOptions(options); err != nil {
		return nil, err
	}
	return formatter.NewLoggly(), nil
}

func logmaticFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	host, err := stringOpt(opts, "hostname", "")
	if err != nil {
		return nil, err
	}
	app, err := stringOpt(opts, "appname", "")
	if err != nil {
		return nil, err
	}
	return formatter.NewLogmatic(host, app), nil
}

func syslogFormatterFactory(_ *Container, _ string, options any) (logger.Formatter, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	app, err := stringOpt(opts, "application_name", "-")
	if err != nil {
		return nil, err
	}
	return formatter.NewSyslog(app), nil
}
