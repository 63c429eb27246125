// Package contracts declares the external collaborators the speech
// synthesizer agent depends on but does not implement: the media player,
// the focus manager, the directive sequencer, the attachment store, and the
// outbound event sender. Every concrete type here lives outside this
// module; these interfaces are the seam.
package contracts

import (
	"context"
	"io"
)

// FocusState is the three-value focus lattice reported by the focus manager.
type FocusState string

const (
	FocusNone       FocusState = "NONE"
	FocusBackground FocusState = "BACKGROUND"
	FocusForeground FocusState = "FOREGROUND"
)

// MediaPlayerErrorType classifies a media player failure.
type MediaPlayerErrorType string

const (
	MediaErrorUnknown        MediaPlayerErrorType = "MEDIA_ERROR_UNKNOWN"
	MediaErrorInternalDevice MediaPlayerErrorType = "MEDIA_ERROR_INTERNAL_DEVICE_ERROR"
	MediaErrorInvalidRequest MediaPlayerErrorType = "MEDIA_ERROR_INVALID_REQUEST"
)

// MediaPlayerObserver receives asynchronous playback callbacks. All methods
// may be invoked from any goroutine; implementations must not block.
type MediaPlayerObserver interface {
	OnPlaybackStarted()
	OnPlaybackFinished()
	OnPlaybackError(errType MediaPlayerErrorType, message string)
}

// MediaPlayer is the playback collaborator. SetSource, Play, and Stop are
// fire-and-forget from the caller's perspective; completion and failure are
// reported asynchronously via the registered MediaPlayerObserver.
type MediaPlayer interface {
	SetSource(source io.ReadCloser) error
	Play() error
	Stop() error
	OffsetMilliseconds() int64
	SetObserver(observer MediaPlayerObserver)
}

// FocusManager arbitrates exclusive use of a named audio channel.
type FocusManager interface {
	// AcquireChannel requests the given activity on channel. A synchronous
	// error return means the request could not even be queued (distinct from
	// an asynchronous grant/denial delivered via FocusObserver).
	AcquireChannel(channel string, activity string) error
	ReleaseChannel(channel string) error
}

// FocusObserver receives asynchronous focus-state changes for a channel the
// agent has acquired.
type FocusObserver interface {
	OnFocusChanged(channel string, state FocusState)
}

// ResultCallback reports the outcome of a single directive back to the
// upstream sequencer. Exactly one method is called exactly once per
// directive (spec P3).
type ResultCallback interface {
	SetCompleted()
	SetFailed(description string)
}

// DirectiveSequencer is the upstream router that delivered the directive.
// The agent calls back into it only to acknowledge lifecycle, never to pull
// more directives.
type DirectiveSequencer interface {
	// Nothing further is required of the sequencer by this agent; directive
	// delivery happens through the agent's own Speak-handling entry points.
	// The interface exists as a named seam for symmetry with the other
	// collaborators and so implementations have a documented extension
	// point (e.g. sequencer-side bookkeeping hooks) without the agent
	// depending on sequencer internals.
}

// AttachmentStore resolves an attachment reference named in a Speak
// directive's payload into a lazily-opened, restartable byte source.
type AttachmentStore interface {
	Resolve(ctx context.Context, attachmentID string) (io.ReadCloser, error)
}

// EventSender delivers an outbound AVS-shaped event envelope (SpeechStarted,
// SpeechFinished, System.Exception) to the cloud voice service.
type EventSender interface {
	SendEvent(ctx context.Context, namespace, name string, payload []byte) error
}

// ContextPublisher accepts a context-state report keyed by the reporting
// capability's namespace and name, matching the central aggregator the context manager feeds into outbound
// requests.
type ContextPublisher interface {
	PublishContext(ctx context.Context, namespace, name string, payload []byte) error
}
