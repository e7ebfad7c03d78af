package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldChannelID identifies the channel a store call arrived through.
	FieldChannelID = "channel_id"
	// FieldTopic is the standardized key for message topics.
	FieldTopic = "topic"
	// FieldUUID is the standardized key for message identifiers.
	FieldUUID = "uuid"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the error classification of a failure.
	FieldErrorHint = "error_hint"
)

type channelKey struct{}

// ContextWithChannel tags ctx with the channel a call is made through.
func ContextWithChannel(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, channelKey{}, id)
}

// ChannelFromContext returns the channel id stored by ContextWithChannel.
func ChannelFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(channelKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := ChannelFromContext(ctx); ok {
		return logger.With(slog.String(FieldChannelID, id))
	}
	return logger
}
