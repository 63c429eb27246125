// Package config declares the capability registration and tunables for the
// speech synthesizer agent, in the same declarative idiom the teacher pack
// uses for its LoggingConfigSpec/ModuleLoggingConfig manifests.
package config

import (
	"time"

	"github.com/skaggar/speechsynthesizer/runtime/logger"
)

// MediaType identifies the kind of content a capability channel carries.
type MediaType string

const (
	// MediaTypeAudio marks a channel carrying spoken audio.
	MediaTypeAudio MediaType = "AUDIO"
)

// BlockingPolicy describes how a capability's channel serializes activity.
// A blocking channel processes one directive at a time; everything else
// queues behind it.
type BlockingPolicy struct {
	Blocking  bool
	MediaType MediaType
}

// DefaultBlockingPolicy returns the blocking policy appropriate for an
// audio-output channel: exactly one utterance active, others queue.
func DefaultBlockingPolicy() BlockingPolicy {
	return BlockingPolicy{Blocking: true, MediaType: MediaTypeAudio}
}

// CapabilityConfig declares the namespace/name pair this agent handles and
// its construction-time tunables.
type CapabilityConfig struct {
	Namespace string
	Name      string
	Channel   string
	Policy    BlockingPolicy

	// EventBufferSize bounds the internal serial executor's task queue; 0
	// or a negative value selects the agent's built-in default.
	EventBufferSize int

	// ShutdownTimeout bounds how long Shutdown waits for the executor to
	// drain in-flight work before returning.
	ShutdownTimeout time.Duration

	// Logging configures the ambient structured logger. A nil value keeps
	// whatever logger.DefaultLogger is already configured with.
	Logging *logger.LoggingConfigSpec
}

// Option mutates a CapabilityConfig during construction.
type Option func(*CapabilityConfig)

// WithChannel overrides the focus-manager channel name (default "Dialog").
func WithChannel(channel string) Option {
	return func(c *CapabilityConfig) { c.Channel = channel }
}

// WithEventBufferSize overrides the internal serial executor's task queue
// sizing.
func WithEventBufferSize(size int) Option {
	return func(c *CapabilityConfig) { c.EventBufferSize = size }
}

// WithShutdownTimeout overrides how long Shutdown waits for drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *CapabilityConfig) { c.ShutdownTimeout = d }
}

// WithLogging installs a logging configuration to apply at construction.
func WithLogging(spec *logger.LoggingConfigSpec) Option {
	return func(c *CapabilityConfig) { c.Logging = spec }
}

// DefaultCapabilityConfig returns the SpeechSynthesizer/Speak registration
// with the audio-channel blocking policy spec.md §6 requires, applying any
// supplied options on top.
func DefaultCapabilityConfig(opts ...Option) CapabilityConfig {
	cfg := CapabilityConfig{
		Namespace:       "SpeechSynthesizer",
		Name:            "Speak",
		Channel:         "Dialog",
		Policy:          DefaultBlockingPolicy(),
		ShutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks the configuration is internally consistent.
func (c *CapabilityConfig) Validate() error {
	if c.Namespace == "" {
		return &ValidationError{Field: "namespace", Message: "must not be empty"}
	}
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if c.Channel == "" {
		return &ValidationError{Field: "channel", Message: "must not be empty"}
	}
	if c.ShutdownTimeout < 0 {
		return &ValidationError{Field: "shutdownTimeout", Message: "must not be negative"}
	}
	return nil
}

// ValidationError represents a capability configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "capability config validation error: " + e.Field + ": " + e.Message
}
