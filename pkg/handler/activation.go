package handler

import (
	"log/slog"

	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// ActivationStrategy decides when a FingersCrossed handler releases its buffer.
type ActivationStrategy interface {
	IsHandlerActivated(rec logger.Record) bool
}

// ErrorLevelActivation activates on records at or above a level.
type ErrorLevelActivation struct {
	actionLevel slog.Level
}

// NewErrorLevelActivation creates an ErrorLevelActivation strategy.
func NewErrorLevelActivation(actionLevel slog.Level) *ErrorLevelActivation {
	return &ErrorLevelActivation{actionLevel: actionLevel}
}

func (s *ErrorLevelActivation) ActionLevel() slog.Level { return s.actionLevel }

func (s *ErrorLevelActivation) IsHandlerActivated(rec logger.Record) bool {
	return rec.Level >= s.actionLevel
}

// ChannelLevelActivation activates per channel, falling back to a default level.
type ChannelLevelActivation struct {
	channels      map[string]slog.Level
	defaultAction slog.Level
}

// NewChannelLevelActivation creates a ChannelLevelActivation strategy.
func NewChannelLevelActivation(defaultAction slog.Level, channels map[string]slog.Level) *ChannelLevelActivation {
	s := &ChannelLevelActivation{
		defaultAction: defaultAction,
		channels:      make(map[string]slog.Level, len(channels)),
	}
	for name, level := range channels {
		s.channels[name] = level
	}
	return s
}

func (s *ChannelLevelActivation) DefaultActionLevel() slog.Level { return s.defaultAction }

// ChannelActionLevels returns a copy of the per-channel levels.
func (s *ChannelLevelActivation) ChannelActionLevels() map[string]slog.Level {
	out := make(map[string]slog.Level, len(s.channels))
	for name, level := range s.channels {
		out[name] = level
	}
	return out
}

func (s *ChannelLevelActivation) IsHandlerActivated(rec logger.Record) bool {
	if level, ok := s.channels[rec.Channel]; ok {
		return rec.Level >= level
	}
	return rec.Level >= s.defaultAction
}
