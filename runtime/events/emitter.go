package events

import "time"

// Emitter provides helpers for publishing agent events with shared metadata.
type Emitter struct {
	bus       *EventBus
	messageID string
	token     string
}

// NewEmitter creates a new event emitter scoped to a single directive.
func NewEmitter(bus *EventBus, messageID, token string) *Emitter {
	return &Emitter{
		bus:       bus,
		messageID: messageID,
		token:     token,
	}
}

// emit publishes an event with shared context fields.
func (e *Emitter) emit(eventType EventType, data EventData) {
	if e == nil || e.bus == nil {
		return
	}

	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		MessageID: e.messageID,
		Token:     e.token,
		Data:      data,
	}

	e.bus.Publish(event)
}

// DirectiveReceived emits the directive.received event.
func (e *Emitter) DirectiveReceived(dialogRequestID string, hasAttachment bool) {
	e.emit(EventDirectiveReceived, DirectiveReceivedData{
		DialogRequestID: dialogRequestID,
		HasAttachment:   hasAttachment,
	})
}

// DirectiveRetired emits the directive.retired event.
func (e *Emitter) DirectiveRetired(reason string) {
	e.emit(EventDirectiveRetired, DirectiveRetiredData{
		Reason: reason,
	})
}

// DirectiveCancelled emits the directive.cancelled event.
func (e *Emitter) DirectiveCancelled(wasPlaying bool) {
	e.emit(EventDirectiveCancelled, DirectiveCancelledData{
		WasPlaying: wasPlaying,
	})
}

// FocusChanged emits the focus.changed event.
func (e *Emitter) FocusChanged(channel, previous, current string) {
	e.emit(EventFocusChanged, FocusChangedData{
		Channel:  channel,
		Previous: previous,
		Current:  current,
	})
}

// FocusAcquisitionFailed emits the focus.acquisition_failed event.
func (e *Emitter) FocusAcquisitionFailed(channel, reason string) {
	e.emit(EventFocusAcquisitionFailed, FocusAcquisitionFailedData{
		Channel: channel,
		Reason:  reason,
	})
}

// PlaybackTransitioned emits the playback.transitioned event.
func (e *Emitter) PlaybackTransitioned(previous, current, trigger string) {
	e.emit(EventPlaybackTransitioned, PlaybackTransitionedData{
		Previous: previous,
		Current:  current,
		Trigger:  trigger,
	})
}

// SpeechStarted emits the speech.started event.
func (e *Emitter) SpeechStarted() {
	e.emit(EventSpeechStarted, SpeechStartedData{})
}

// SpeechFinished emits the speech.finished event.
func (e *Emitter) SpeechFinished() {
	e.emit(EventSpeechFinished, SpeechFinishedData{})
}

// ContextPublished emits the context.published event.
func (e *Emitter) ContextPublished(offsetMilliseconds int64, playerActivity string) {
	e.emit(EventContextPublished, ContextPublishedData{
		OffsetMilliseconds: offsetMilliseconds,
		PlayerActivity:     playerActivity,
	})
}

// ExceptionReported emits the system.exception event.
func (e *Emitter) ExceptionReported(code, description string) {
	e.emit(EventExceptionReported, ExceptionReportedData{
		Code:        code,
		Description: description,
	})
}
