package config_test

import (
	"testing"
	"time"

	"github.com/skaggar/speechsynthesizer/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCapabilityConfig(t *testing.T) {
	cfg := config.DefaultCapabilityConfig()

	assert.Equal(t, "SpeechSynthesizer", cfg.Namespace)
	assert.Equal(t, "Speak", cfg.Name)
	assert.Equal(t, "Dialog", cfg.Channel)
	assert.True(t, cfg.Policy.Blocking)
	assert.Equal(t, config.MediaTypeAudio, cfg.Policy.MediaType)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestDefaultCapabilityConfig_WithOptions(t *testing.T) {
	cfg := config.DefaultCapabilityConfig(
		config.WithChannel("Alerts"),
		config.WithEventBufferSize(64),
		config.WithShutdownTimeout(2*time.Second),
	)

	assert.Equal(t, "Alerts", cfg.Channel)
	assert.Equal(t, 64, cfg.EventBufferSize)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestCapabilityConfig_Validate(t *testing.T) {
	cfg := config.DefaultCapabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Namespace = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}

func TestCapabilityConfig_Validate_NegativeShutdownTimeout(t *testing.T) {
	cfg := config.DefaultCapabilityConfig(config.WithShutdownTimeout(-1 * time.Second))
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdownTimeout")
}

func TestCapabilityConfig_Validate_EmptyChannel(t *testing.T) {
	cfg := config.DefaultCapabilityConfig(config.WithChannel(""))
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel")
}
