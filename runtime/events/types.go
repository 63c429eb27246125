package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the type of event emitted by the agent.
type EventType string

const (
	// EventDirectiveReceived marks pre-handle of an inbound Speak directive.
	EventDirectiveReceived EventType = "directive.received"
	// EventDirectiveRetired marks a directive leaving the store, successfully or not.
	EventDirectiveRetired EventType = "directive.retired"
	// EventDirectiveCancelled marks a directive cancelled before or during playback.
	EventDirectiveCancelled EventType = "directive.cancelled"

	// EventFocusChanged marks a focus-state transition reported by the focus manager.
	EventFocusChanged EventType = "focus.changed"
	// EventFocusAcquisitionFailed marks a failed channel acquisition attempt.
	EventFocusAcquisitionFailed EventType = "focus.acquisition_failed"

	// EventPlaybackTransitioned marks a playback-state transition driven by the executor.
	EventPlaybackTransitioned EventType = "playback.transitioned"

	// EventSpeechStarted marks emission of the outbound SpeechStarted event.
	EventSpeechStarted EventType = "speech.started"
	// EventSpeechFinished marks emission of the outbound SpeechFinished event.
	EventSpeechFinished EventType = "speech.finished"

	// EventContextPublished marks a context-state report being handed to the context provider.
	EventContextPublished EventType = "context.published"

	// EventExceptionReported marks an outbound System.Exception report.
	EventExceptionReported EventType = "system.exception"
)

// EventData is a marker interface for event payloads.
type EventData interface {
	eventData()
}

// Event represents a runtime event delivered to observers.
type Event struct {
	Type      EventType
	Timestamp time.Time
	MessageID string
	Token     string
	Data      EventData
}

// baseEventData provides a shared marker implementation for all event payloads.
type baseEventData struct{}

func (baseEventData) eventData() {}

// DirectiveReceivedData contains data for directive pre-handle events.
type DirectiveReceivedData struct {
	baseEventData
	DialogRequestID string
	HasAttachment   bool
}

// DirectiveRetiredData contains data for directive retirement events.
type DirectiveRetiredData struct {
	baseEventData
	Reason string // "finished", "cancelled", "cancelled while queued", or "error: <message>"
}

// DirectiveCancelledData contains data for directive cancellation events.
type DirectiveCancelledData struct {
	baseEventData
	WasPlaying bool
}

// FocusChangedData contains data for focus-state transition events.
type FocusChangedData struct {
	baseEventData
	Channel  string
	Previous string
	Current  string
}

// FocusAcquisitionFailedData contains data for failed channel acquisition events.
type FocusAcquisitionFailedData struct {
	baseEventData
	Channel string
	Reason  string
}

// PlaybackTransitionedData contains data for playback-state transition events.
type PlaybackTransitionedData struct {
	baseEventData
	Previous string
	Current  string
	Trigger  string
}

// SpeechStartedData contains data for the outbound SpeechStarted event.
type SpeechStartedData struct {
	baseEventData
}

// SpeechFinishedData contains data for the outbound SpeechFinished event.
type SpeechFinishedData struct {
	baseEventData
}

// ContextPublishedData contains data for context-state publication events.
type ContextPublishedData struct {
	baseEventData
	OffsetMilliseconds int64
	PlayerActivity     string
}

// ExceptionReportedData contains data for outbound exception reports.
type ExceptionReportedData struct {
	baseEventData
	Code        string
	Description string
}

// Message is the header/payload envelope shared by inbound directives and
// outbound events, matching the shape used throughout AVS-family directive
// routers.
type Message struct {
	Header  map[string]string `json:"header"`
	Payload json.RawMessage   `json:"payload"`
}

// NewEvent builds an outbound event envelope with the given namespace and name.
func NewEvent(namespace, name, messageID, dialogRequestID string, payload json.RawMessage) Message {
	header := map[string]string{
		"namespace": namespace,
		"name":      name,
		"messageId": messageID,
	}
	if dialogRequestID != "" {
		header["dialogRequestId"] = dialogRequestID
	}
	return Message{Header: header, Payload: payload}
}

// ExceptionPayload is the payload shape for System.Exception reports.
type ExceptionPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ContextStatePayload is the payload shape published by the context provider,
// matching spec.md's {token, offsetInMilliseconds, playerActivity} report.
type ContextStatePayload struct {
	Token               string `json:"token"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds"`
	PlayerActivity      string `json:"playerActivity"`
}
