// Package logger provides structured logging for the speech synthesizer
// capability agent.
//
// This package wraps Go's standard log/slog with convenience functions for:
//   - Directive lifecycle logging (received, retired)
//   - Focus and playback state transition logging
//   - Event emission logging (SpeechStarted, SpeechFinished, exceptions)
//   - Contextual logging keyed off the active directive
//   - Level-based verbosity control, optionally overridden per package
//
// All exported functions use the global DefaultLogger, which can be
// reconfigured at any time via SetLevel, SetVerbose, SetLogger, or Configure.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use.
	DefaultLogger *slog.Logger

	// logOutput is the writer the default handler writes to. Tests swap
	// this out to capture output.
	logOutput io.Writer = os.Stderr

	// currentLevel and currentFormat track the active configuration.
	currentLevel  = slog.LevelInfo
	currentFormat = FormatText

	// customHandler, when non-nil, overrides the built-in handler
	// construction entirely; set via SetLogger.
	customHandler slog.Handler
)

func init() {
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		currentLevel = ParseLevel(envLevel)
	}
	initLogger(currentLevel, nil)
}

// initLogger (re)builds DefaultLogger from currentFormat/logOutput/commonFields,
// unless a custom logger has been installed via SetLogger.
func initLogger(level slog.Level, commonFields []slog.Attr) {
	if customHandler != nil {
		DefaultLogger = slog.New(customHandler)
		slog.SetDefault(DefaultLogger)
		return
	}

	opts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if currentFormat == FormatJSON {
		base = slog.NewJSONHandler(logOutput, opts)
	} else {
		base = slog.NewTextHandler(logOutput, opts)
	}

	var handler slog.Handler
	if globalModuleConfig != nil && len(globalModuleConfig.modules) > 0 {
		handler = NewModuleHandler(base, globalModuleConfig, commonFields...)
	} else {
		handler = NewContextHandler(base, commonFields...)
	}

	DefaultLogger = slog.New(handler)
	slog.SetDefault(DefaultLogger)
}

// SetLevel changes the logging level for all subsequent log operations.
func SetLevel(level slog.Level) {
	currentLevel = level
	initLogger(level, nil)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise info-level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
		return
	}
	SetLevel(slog.LevelInfo)
}

// SetLogger installs l as DefaultLogger and as slog's default, bypassing the
// built-in handler construction; later rebuilds keep using l's handler.
// Passing nil restores the default behavior.
func SetLogger(l *slog.Logger) {
	if l == nil {
		customHandler = nil
		initLogger(currentLevel, nil)
		return
	}
	customHandler = l.Handler()
	DefaultLogger = l
	slog.SetDefault(l)
}

// SetOutput changes the writer the default handler writes to, preserving
// the current format and level. A nil writer resets output to stderr. Has
// no effect if a custom handler is set via SetLogger.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
	initLogger(currentLevel, nil)
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) { DefaultLogger.Info(msg, args...) }

// InfoContext logs an informational message with context and attributes.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
func Debug(msg string, args ...any) { DefaultLogger.Debug(msg, args...) }

// DebugContext logs a debug message with context and attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with structured attributes.
func Warn(msg string, args ...any) { DefaultLogger.Warn(msg, args...) }

// WarnContext logs a warning message with context and attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

// Error logs an error message with structured attributes.
func Error(msg string, args ...any) { DefaultLogger.Error(msg, args...) }

// ErrorContext logs an error message with context and attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

// DirectiveReceived logs pre-handle of a Speak directive.
func DirectiveReceived(messageID, token string, attrs ...any) {
	all := append([]any{"messageId", messageID, "token", token}, attrs...)
	Info("directive received", all...)
}

// DirectiveRetired logs retirement of a directive, successful or not.
func DirectiveRetired(messageID, reason string, attrs ...any) {
	all := append([]any{"messageId", messageID, "reason", reason}, attrs...)
	Info("directive retired", all...)
}

// FocusTransition logs a focus-state change observed by the coordinator.
func FocusTransition(messageID, from, to string) {
	Info("focus transition", "messageId", messageID, "from", from, "to", to)
}

// PlaybackTransition logs a playback-state transition driven by the executor.
func PlaybackTransition(messageID, from, to, trigger string) {
	Info("playback transition", "messageId", messageID, "from", from, "to", to, "trigger", trigger)
}

// EventEmitted logs an outbound event (SpeechStarted, SpeechFinished, exception).
func EventEmitted(name, messageID, token string, attrs ...any) {
	all := append([]any{"name", name, "messageId", messageID, "token", token}, attrs...)
	Info("event emitted", all...)
}
