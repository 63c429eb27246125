package logger

import (
	"context"
	"log/slog"
	"strings"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields.
// These keys are used to store values in context.Context that will be
// automatically extracted and added to log entries.
const (
	// ContextKeyMessageID identifies the directive or event message id.
	ContextKeyMessageID contextKey = "message_id"

	// ContextKeyDialogRequestID identifies the dialog request a directive belongs to.
	ContextKeyDialogRequestID contextKey = "dialog_request_id"

	// ContextKeyToken identifies the speak-directive playback token.
	ContextKeyToken contextKey = "token"

	// ContextKeyChannel identifies the focus-management channel name (e.g. "Dialog").
	ContextKeyChannel contextKey = "channel"

	// ContextKeyComponent identifies the agent component emitting the log.
	ContextKeyComponent contextKey = "component"

	// ContextKeyCorrelationID is used for tracing a directive across components.
	ContextKeyCorrelationID contextKey = "correlation_id"

	// ContextKeyEnvironment identifies the deployment environment.
	ContextKeyEnvironment contextKey = "environment"
)

// allContextKeys lists all context keys that should be extracted for logging.
// This is used by the handler to iterate over all possible context values.
var allContextKeys = []contextKey{
	ContextKeyMessageID,
	ContextKeyDialogRequestID,
	ContextKeyToken,
	ContextKeyChannel,
	ContextKeyComponent,
	ContextKeyCorrelationID,
	ContextKeyEnvironment,
}

// WithMessageID returns a new context with the directive message id set.
func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, ContextKeyMessageID, messageID)
}

// WithDialogRequestID returns a new context with the dialog request id set.
func WithDialogRequestID(ctx context.Context, dialogRequestID string) context.Context {
	return context.WithValue(ctx, ContextKeyDialogRequestID, dialogRequestID)
}

// WithToken returns a new context with the playback token set.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyToken, token)
}

// WithChannel returns a new context with the focus channel name set.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, ContextKeyChannel, channel)
}

// WithComponent returns a new context with the emitting component name set.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ContextKeyComponent, component)
}

// WithCorrelationID returns a new context with the correlation id set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// WithEnvironment returns a new context with the environment set.
func WithEnvironment(ctx context.Context, environment string) context.Context {
	return context.WithValue(ctx, ContextKeyEnvironment, environment)
}

// WithLoggingContext returns a new context with multiple logging fields set at once.
// Only non-empty values are set.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.MessageID != "" {
		ctx = WithMessageID(ctx, fields.MessageID)
	}
	if fields.DialogRequestID != "" {
		ctx = WithDialogRequestID(ctx, fields.DialogRequestID)
	}
	if fields.Token != "" {
		ctx = WithToken(ctx, fields.Token)
	}
	if fields.Channel != "" {
		ctx = WithChannel(ctx, fields.Channel)
	}
	if fields.Component != "" {
		ctx = WithComponent(ctx, fields.Component)
	}
	if fields.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, fields.CorrelationID)
	}
	if fields.Environment != "" {
		ctx = WithEnvironment(ctx, fields.Environment)
	}
	return ctx
}

// LoggingFields holds all standard logging context fields.
// This struct is used with WithLoggingContext for bulk field setting.
type LoggingFields struct {
	MessageID       string
	DialogRequestID string
	Token           string
	Channel         string
	Component       string
	CorrelationID   string
	Environment     string
}

// ExtractLoggingFields extracts all logging fields from a context.
// Returns a LoggingFields struct with all values found in the context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	fields := LoggingFields{}
	if v := ctx.Value(ContextKeyMessageID); v != nil {
		fields.MessageID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyDialogRequestID); v != nil {
		fields.DialogRequestID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyToken); v != nil {
		fields.Token, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyChannel); v != nil {
		fields.Channel, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyComponent); v != nil {
		fields.Component, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyCorrelationID); v != nil {
		fields.CorrelationID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyEnvironment); v != nil {
		fields.Environment, _ = v.(string)
	}
	return fields
}

// ParseLevel converts a level name ("trace", "debug", "info", "warn",
// "warning", "error") into a slog.Level. Unrecognized or empty input
// returns slog.LevelInfo. Matching is case-insensitive.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
