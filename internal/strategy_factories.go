package internal

import (
	"log/slog"

	"github.com/spf13/cast"

	"github.com/dmitrymomot/slogfactory/pkg/handler"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultActivationStrategyFactories returns the built-in activation strategies.
func DefaultActivationStrategyFactories() map[string]Factory[handler.ActivationStrategy] {
	return map[string]Factory[handler.ActivationStrategy]{
		"error_level":   errorLevelStrategyFactory,
		"channel_level": channelLevelStrategyFactory,
	}
}

func errorLevelStrategyFactory(_ *Container, _ string, options any) (handler.ActivationStrategy, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	level, err := levelOpt(opts, "action_level", logger.LevelWarning)
	if err != nil {
		return nil, err
	}
	return handler.NewErrorLevelActivation(level), nil
}

func channelLevelStrategyFactory(_ *Container, _ string, options any) (handler.ActivationStrategy, error) {
	opts, err := optionalOptions(options)
	if err != nil {
		return nil, err
	}
	defaultLevel, err := levelOpt(opts, "default_action_level", logger.LevelWarning)
	if err != nil {
		return nil, err
	}

	channels := make(map[string]slog.Level)
	if v, ok := opts["channel_to_action_level"]; ok && v != nil {
		raw, err := toOptions(v)
		if err != nil {
			return nil, notCreatedf("channel_to_action_level must be a map of channels to levels")
		}
		for channel, lvl := range raw {
			level, err := logger.ParseLevel(lvl)
			if err != nil {
				return nil, invalidOption("channel_to_action_level."+cast.ToString(channel), err)
			}
			channels[channel] = level
		}
	}
	return handler.NewChannelLevelActivation(defaultLevel, channels), nil
}
