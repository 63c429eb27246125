package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	SetLevel(slog.LevelDebug)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelInfo)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelWarn)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}

	SetLevel(slog.LevelError)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set")
	}
}

func TestSetVerbose(t *testing.T) {
	SetVerbose(true)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set after SetVerbose(true)")
	}

	SetVerbose(false)
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be set after SetVerbose(false)")
	}
}

func TestInfo(t *testing.T) {
	Info("test message")
	Info("test with args", "key", "value")
	Info("test with multiple", "key1", "value1", "key2", "value2")
}

func TestInfoContext(t *testing.T) {
	ctx := context.Background()

	InfoContext(ctx, "test message")
	InfoContext(ctx, "test with args", "key", "value")
}

func TestDebug(t *testing.T) {
	SetVerbose(true)

	Debug("debug message")
	Debug("debug with args", "key", "value")

	SetVerbose(false)
}

func TestDebugContext(t *testing.T) {
	SetVerbose(true)
	ctx := context.Background()

	DebugContext(ctx, "debug message")
	DebugContext(ctx, "debug with args", "key", "value")

	SetVerbose(false)
}

func TestWarn(t *testing.T) {
	Warn("warning message")
	Warn("warning with args", "key", "value")
}

func TestWarnContext(t *testing.T) {
	ctx := context.Background()

	WarnContext(ctx, "warning message")
	WarnContext(ctx, "warning with args", "key", "value")
}

func TestError(t *testing.T) {
	Error("error message")
	Error("error with args", "key", "value", "error", "test error")
}

func TestErrorContext(t *testing.T) {
	ctx := context.Background()

	ErrorContext(ctx, "error message")
	ErrorContext(ctx, "error with args", "key", "value", "error", "test error")
}

func TestDirectiveReceived(t *testing.T) {
	DirectiveReceived("msg-1", "token-abc")
	DirectiveReceived("msg-2", "token-def", "dialogRequestId", "dlg-1")
}

func TestDirectiveRetired(t *testing.T) {
	DirectiveRetired("msg-1", "finished")
	DirectiveRetired("msg-2", "cancelled", "reasonDetail", "superseded by CLEAR_ALL")
}

func TestFocusTransition(t *testing.T) {
	FocusTransition("msg-1", "NONE", "FOREGROUND")
	FocusTransition("msg-1", "FOREGROUND", "BACKGROUND")
}

func TestPlaybackTransition(t *testing.T) {
	PlaybackTransition("msg-1", "GAINING_FOCUS", "PLAYING", "onFocusChanged")
	PlaybackTransition("msg-1", "PLAYING", "FINISHED", "playbackFinished")
}

func TestEventEmitted(t *testing.T) {
	EventEmitted("SpeechStarted", "msg-1", "token-abc")
	EventEmitted("SpeechFinished", "msg-1", "token-abc", "durationMs", 1500)
}

func TestDefaultLoggerInitialized(t *testing.T) {
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to be initialized")
	}
}

func TestLoggingWithNilContext(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("Recovered from panic with nil context: %v", r)
		}
	}()

	ctx := context.Background()
	InfoContext(ctx, "test")
}

func TestLoggingWithStructuredAttributes(t *testing.T) {
	Info("structured log",
		"string", "value",
		"int", 42,
		"bool", true,
		"float", 3.14,
	)
}

func TestLogFormatJSON(t *testing.T) {
	origFormat := currentFormat
	origOutput := logOutput
	defer func() {
		currentFormat = origFormat
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	logOutput = &buf
	currentFormat = FormatJSON
	initLogger(slog.LevelInfo, nil)

	Info("json test message", "key", "value")

	output := buf.String()
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed); err != nil {
		t.Fatalf("Expected valid JSON output, got error: %v\nOutput: %s", err, output)
	}
	if msg, ok := parsed["msg"].(string); !ok || msg != "json test message" {
		t.Errorf("Expected msg 'json test message', got %v", parsed["msg"])
	}
}

func TestLogFormatText(t *testing.T) {
	origFormat := currentFormat
	origOutput := logOutput
	defer func() {
		currentFormat = origFormat
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	logOutput = &buf
	currentFormat = FormatText
	initLogger(slog.LevelInfo, nil)

	Info("text test message", "key", "value")

	output := buf.String()
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed); err == nil {
		t.Error("Expected non-JSON output for text format, but got valid JSON")
	}
	if !strings.Contains(output, "text test message") {
		t.Errorf("Expected output to contain message, got: %s", output)
	}
}

func TestLogFormatEnvVar(t *testing.T) {
	origFormat := currentFormat
	origOutput := logOutput
	defer func() {
		currentFormat = origFormat
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	tests := []struct {
		name     string
		envValue string
		expected string
	}{
		{"json lowercase", "json", FormatJSON},
		{"json uppercase", "JSON", FormatJSON},
		{"json mixed case", "Json", FormatJSON},
		{"text explicit", "text", FormatText},
		{"empty defaults to text", "", FormatText},
		{"unknown defaults to text", "xml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currentFormat = FormatText
			if strings.EqualFold(tt.envValue, FormatJSON) {
				currentFormat = FormatJSON
			}
			if currentFormat != tt.expected {
				t.Errorf("Expected format %q, got %q", tt.expected, currentFormat)
			}
		})
	}
}

func TestSetLogger_Custom(t *testing.T) {
	origLogger := DefaultLogger
	origOutput := logOutput
	origHandler := customHandler
	defer func() {
		customHandler = origHandler
		DefaultLogger = origLogger
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	SetLogger(custom)

	Info("custom logger test", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "custom logger test") {
		t.Errorf("Expected custom logger to capture output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected structured attrs in output, got: %s", output)
	}
}

func TestSetLogger_SetLevelPreservesCustomLogger(t *testing.T) {
	origLogger := DefaultLogger
	origOutput := logOutput
	origHandler := customHandler
	defer func() {
		customHandler = origHandler
		DefaultLogger = origLogger
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	SetLevel(slog.LevelDebug)

	Info("after set level", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "after set level") {
		t.Errorf("Expected custom logger to still capture output after SetLevel(), got: %s", output)
	}
}

func TestSetLogger_NilResetsDefault(t *testing.T) {
	origLogger := DefaultLogger
	origOutput := logOutput
	defer func() {
		DefaultLogger = origLogger
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)

	if DefaultLogger != custom {
		t.Error("Expected DefaultLogger to be the custom logger")
	}

	SetLogger(nil)

	if DefaultLogger == custom {
		t.Error("Expected DefaultLogger to be reset after SetLogger(nil)")
	}
	if DefaultLogger == nil {
		t.Error("Expected DefaultLogger to not be nil after SetLogger(nil)")
	}

	Info("after reset")
}

func TestSetLogger_SlogDefaultUpdated(t *testing.T) {
	origLogger := DefaultLogger
	origOutput := logOutput
	origHandler := customHandler
	defer func() {
		customHandler = origHandler
		DefaultLogger = origLogger
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)

	if slog.Default() != custom {
		t.Error("Expected slog.Default() to return the custom logger")
	}
}

func TestSetLogger_ConfigureDoesNotOverwrite(t *testing.T) {
	origLogger := DefaultLogger
	origOutput := logOutput
	origHandler := customHandler
	defer func() {
		customHandler = origHandler
		DefaultLogger = origLogger
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	err := Configure(&LoggingConfigSpec{DefaultLevel: "debug"})
	if err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}

	Info("after configure", "source", "test")

	output := buf.String()
	if !strings.Contains(output, "after configure") {
		t.Errorf("Expected custom logger to still capture output after Configure(), got: %s", output)
	}
}

func TestSetOutputPreservesFormat(t *testing.T) {
	origFormat := currentFormat
	origOutput := logOutput
	defer func() {
		currentFormat = origFormat
		logOutput = origOutput
		initLogger(currentLevel, nil)
	}()

	currentFormat = FormatJSON
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("format preserved", "key", "value")

	output := buf.String()
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &parsed); err != nil {
		t.Fatalf("Expected JSON output after SetOutput, got error: %v\nOutput: %s", err, output)
	}
}
