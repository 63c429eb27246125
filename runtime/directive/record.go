// Package directive holds the per-utterance Directive Record and the
// Directive Store that tracks pre-handled-but-not-yet-retired records.
package directive

import (
	"io"
	"sync/atomic"

	"github.com/skaggar/speechsynthesizer/runtime/contracts"
)

// Record represents one Speak utterance from pre-handle through retirement.
//
// All fields are owned by the serial executor; nothing outside the executor
// goroutine may mutate a Record after it is registered with the Store.
type Record struct {
	// MessageID is the unique identifier from the directive envelope, and
	// the Store's primary key.
	MessageID string

	// DialogRequestID optionally ties this directive to a dialog turn.
	DialogRequestID string

	// Token is the opaque string echoed in outbound events and the context
	// report.
	Token string

	// AttachmentID names the byte source to resolve via the AttachmentStore,
	// lazily, only at the GAINING_FOCUS -> PLAYING transition.
	AttachmentID string

	// ResultCallback reports completion/failure upstream. Nil is valid: the
	// directive is handled without an upstream acknowledgement.
	ResultCallback contracts.ResultCallback

	// reader is the opened attachment stream, set at PLAYING start and
	// cleared at FINISHED.
	reader io.ReadCloser

	// sendFinished and sendCompleted are each cleared exactly once before
	// retirement (spec I3); they track whether a SpeechFinished event and a
	// completion report, respectively, are still owed.
	sendFinished  atomic.Bool
	sendCompleted atomic.Bool
}

// NewRecord creates a Record with both notification obligations owed.
func NewRecord(messageID, dialogRequestID, token, attachmentID string, callback contracts.ResultCallback) *Record {
	r := &Record{
		MessageID:       messageID,
		DialogRequestID: dialogRequestID,
		Token:           token,
		AttachmentID:    attachmentID,
		ResultCallback:  callback,
	}
	r.sendFinished.Store(true)
	r.sendCompleted.Store(true)
	return r
}

// OwesFinished reports whether a SpeechFinished event is still owed.
func (r *Record) OwesFinished() bool { return r.sendFinished.Load() }

// OwesCompleted reports whether a completion report is still owed upstream.
func (r *Record) OwesCompleted() bool { return r.sendCompleted.Load() }

// ClearFinished marks the SpeechFinished obligation as discharged and
// reports whether it was the caller that discharged it (false if already
// cleared, guarding against double-emission).
func (r *Record) ClearFinished() bool { return r.sendFinished.CompareAndSwap(true, false) }

// ClearCompleted marks the completion-report obligation as discharged and
// reports whether it was the caller that discharged it.
func (r *Record) ClearCompleted() bool { return r.sendCompleted.CompareAndSwap(true, false) }

// SetReader stores the opened attachment stream for the active playback.
func (r *Record) SetReader(rc io.ReadCloser) { r.reader = rc }

// Reader returns the currently open attachment stream, or nil.
func (r *Record) Reader() io.ReadCloser { return r.reader }

// ReleaseReader closes and clears the attachment stream if one is open.
func (r *Record) ReleaseReader() error {
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}
