// Package speechsynthesizer implements the SpeechSynthesizer capability
// agent: directive lifecycle, focus/playback coordination, observer
// notification, and context reporting for spoken-audio directives.
//
// Agent is the sole exported entry point. Everything else under runtime/
// is plumbing this package wires together.
package speechsynthesizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skaggar/speechsynthesizer/pkg/config"
	cserrors "github.com/skaggar/speechsynthesizer/pkg/errors"
	"github.com/skaggar/speechsynthesizer/runtime/contextreport"
	"github.com/skaggar/speechsynthesizer/runtime/contracts"
	"github.com/skaggar/speechsynthesizer/runtime/directive"
	"github.com/skaggar/speechsynthesizer/runtime/events"
	"github.com/skaggar/speechsynthesizer/runtime/executor"
	"github.com/skaggar/speechsynthesizer/runtime/logger"
	"github.com/skaggar/speechsynthesizer/runtime/metrics"
	"github.com/skaggar/speechsynthesizer/runtime/observer"
	"github.com/skaggar/speechsynthesizer/runtime/playback"
)

// Error codes reported in exception events and SetFailed descriptions,
// matching the cloud-facing vocabulary named in spec §7.
const (
	CodeUnexpectedInformation = "UNEXPECTED_INFORMATION_RECEIVED"
	CodeInternalError         = "INTERNAL_ERROR"
	CodeChannelAcquisition    = "CHANNEL_ACQUISITION_FAILED"
	CodeCancelled             = "CANCELLED"
	CodeShuttingDown          = "SHUTTING_DOWN"
)

// eventsBufferSize is the serial executor's task queue size used when the
// capability config leaves EventBufferSize unset.
const eventsBufferSize = 64

// defaultShutdownTimeout is used when an Agent is constructed with a
// CapabilityConfig that leaves ShutdownTimeout unset.
const defaultShutdownTimeout = 5 * time.Second

// Agent coordinates one SpeechSynthesizer namespace's worth of Speak
// directives. It is safe for concurrent use from arbitrary goroutines;
// every public method either does cheap validation plus a thread-safe
// Store operation, or enqueues work onto the internal serial executor.
type Agent struct {
	cfg config.CapabilityConfig

	media       contracts.MediaPlayer
	focus       contracts.FocusManager
	attachments contracts.AttachmentStore
	sender      contracts.EventSender
	ctxProvider *contextreport.Provider

	store     *directive.Store
	machine   *playback.Machine
	observers *observer.Registry
	bus       *events.EventBus

	// exec is constructed last and shut down first, so no task can ever
	// outlive the state it touches (spec §9).
	exec *executor.Serial

	// playStarted marks when the current record entered PLAYING, for the
	// playback duration histogram. Executor-goroutine only, like every
	// other piece of mutable coordinator state.
	playStarted time.Time

	shuttingDown sync.Once
}

// Collaborators bundles the external seams an Agent depends on. All fields
// are required except ContextPublisher, which may be nil if no context
// manager is wired up (context reports are then silently dropped).
type Collaborators struct {
	MediaPlayer      contracts.MediaPlayer
	FocusManager     contracts.FocusManager
	AttachmentStore  contracts.AttachmentStore
	EventSender      contracts.EventSender
	ContextPublisher contracts.ContextPublisher
}

// New constructs an Agent from its configuration and collaborators and
// starts its internal executor. A non-nil cfg.Logging is applied to the
// package logger first.
func New(cfg config.CapabilityConfig, collab Collaborators) *Agent {
	if cfg.Logging != nil {
		if err := logger.Configure(cfg.Logging); err != nil {
			logger.Warn("logging configuration not applied", "error", err)
		}
	}
	a := &Agent{
		cfg:         cfg,
		media:       collab.MediaPlayer,
		focus:       collab.FocusManager,
		attachments: collab.AttachmentStore,
		sender:      collab.EventSender,
		ctxProvider: contextreport.NewProvider(cfg.Namespace, "SpeechState", collab.ContextPublisher),
		machine:     playback.NewMachine(),
		observers:   observer.NewRegistry(),
		bus:         events.NewEventBus(),
	}
	a.store = directive.NewStore(a.machine.HasCurrentRecord, a.scheduleActivate)
	taskBuffer := cfg.EventBufferSize
	if taskBuffer <= 0 {
		taskBuffer = eventsBufferSize
	}
	a.exec = executor.New(taskBuffer)

	if a.media != nil {
		a.media.SetObserver(a)
	}

	return a
}

// Events returns the agent's event bus, for subscribing observability
// listeners (metrics bridges, loggers, test harnesses).
func (a *Agent) Events() *events.EventBus { return a.bus }

// AddObserver registers o to receive every subsequent playback state
// transition. See Registry for the removal-from-callback caveat.
func (a *Agent) AddObserver(o observer.Observer) { a.observers.Add(o) }

// RemoveObserver unregisters o. Must not be called from within an
// OnTransition callback.
func (a *Agent) RemoveObserver(o observer.Observer) { a.observers.Remove(o) }

// PreHandle validates and caches a Speak directive ahead of activation. A
// duplicate messageId is silently dropped; the first registration remains
// authoritative (spec §7).
func (a *Agent) PreHandle(messageID, dialogRequestID, token, attachmentID string, callback contracts.ResultCallback) error {
	if messageID == "" {
		// Defensive default: the router is expected to always supply a
		// messageId, but a generated one keeps the record addressable in
		// the store and in logs/events rather than colliding on "".
		messageID = uuid.NewString()
	}
	if token == "" {
		err := cserrors.New("coordinator", "PreHandle", nil).
			WithStatusCode(400).
			WithDetails(map[string]any{"code": CodeUnexpectedInformation, "messageId": messageID})
		if callback != nil {
			callback.SetFailed(CodeUnexpectedInformation)
		}
		a.reportExceptionFor(context.Background(), messageID, "", CodeUnexpectedInformation, "missing required field: token")
		return err
	}

	r := directive.NewRecord(messageID, dialogRequestID, token, attachmentID, callback)
	if !a.store.Register(r) {
		logger.Debug("duplicate pre-handle dropped", "messageId", messageID)
		return nil
	}

	emitter := events.NewEmitter(a.bus, messageID, token)
	emitter.DirectiveReceived(dialogRequestID, attachmentID != "")
	logger.DirectiveReceived(messageID, token)
	return nil
}

// Handle begins processing a previously pre-handled directive: it joins the
// pending queue and, if nothing is currently speaking, is activated
// immediately.
func (a *Agent) Handle(messageID string) error {
	r := a.store.Lookup(messageID)
	if r == nil {
		return fmt.Errorf("speechsynthesizer: handle called for unknown messageId %q", messageID)
	}
	a.store.Enqueue(r)
	metrics.SetQueueDepth(a.store.QueueLen())
	return nil
}

// scheduleActivate is the Store's onActivate callback: it runs on whatever
// goroutine called Enqueue, so it only ever submits a task rather than
// touching state directly.
func (a *Agent) scheduleActivate(r *directive.Record) {
	a.exec.Submit(func() { a.activate(r) })
}

// activate makes r the current speaker and requests foreground focus.
// Executor-goroutine only. r must no longer sit in the pending queue once
// it is current -- RemoveFromQueue is a no-op if the caller already
// dequeued it (e.g. retireAndAdvance's DequeueHead), so it is always safe
// to call here regardless of how r arrived.
func (a *Agent) activate(r *directive.Record) {
	a.store.RemoveFromQueue(r.MessageID)

	from := a.machine.Current()
	a.machine.SetCurrentRecord(r)
	a.machine.SetDesired(playback.Playing)
	a.machine.Transition(playback.GainingFocus)
	a.observers.Notify(r.MessageID, r.Token, from, playback.GainingFocus)

	if err := a.focus.AcquireChannel(a.cfg.Channel, string(contracts.FocusForeground)); err != nil {
		metrics.RecordFocusAcquisition("rejected")
		events.NewEmitter(a.bus, r.MessageID, r.Token).FocusAcquisitionFailed(a.cfg.Channel, err.Error())
		a.failCurrentAndAdvance(CodeChannelAcquisition, err.Error())
		return
	}
	metrics.RecordFocusAcquisition("granted")
}

// OnFocusChanged is the agent's only synchronous public entry point: it
// enqueues the transition work, then blocks until the state machine
// reaches the state that change implies, so the focus manager observes a
// quiesced agent before returning (spec §5).
func (a *Agent) OnFocusChanged(channel string, state contracts.FocusState) {
	// The task updates the desired state, so it must have run before the
	// wait on that state begins.
	if !a.exec.SubmitAndWait(func() { a.handleFocusChanged(state) }) {
		return
	}
	a.machine.WaitForDesired()
}

func (a *Agent) handleFocusChanged(state contracts.FocusState) {
	switch state {
	case contracts.FocusForeground:
		a.beginPlaybackIfReady()
	case contracts.FocusBackground, contracts.FocusNone:
		a.loseForeground()
	}
}

func (a *Agent) beginPlaybackIfReady() {
	current := a.currentRecord()
	if current == nil {
		a.machine.SetDesired(playback.Finished)
		return
	}
	if s := a.machine.Current(); s != playback.Finished && s != playback.GainingFocus {
		return
	}

	reader, err := a.attachments.Resolve(context.Background(), current.AttachmentID)
	if err != nil {
		a.reportException(context.Background(), CodeInternalError, err.Error())
		a.failCurrentAndAdvance(CodeInternalError, err.Error())
		return
	}
	current.SetReader(reader)

	if err := a.media.SetSource(reader); err != nil {
		a.failMediaStart(err)
		return
	}
	if err := a.media.Play(); err != nil {
		a.failMediaStart(err)
		return
	}

	from := a.machine.Current()
	a.machine.Transition(playback.Playing)
	a.playStarted = time.Now()
	a.observers.Notify(current.MessageID, current.Token, from, playback.Playing)

	emitter := events.NewEmitter(a.bus, current.MessageID, current.Token)
	emitter.PlaybackTransitioned(string(from), string(playback.Playing), "focus_granted")
	emitter.SpeechStarted()
	a.sendEvent(current.Token, "SpeechStarted")
	logger.PlaybackTransition(current.MessageID, string(from), string(playback.Playing), "focus_granted")
	metrics.RecordEventEmitted("SpeechStarted")
	a.publishContext(current)
}

func (a *Agent) failMediaStart(err error) {
	current := a.currentRecord()
	a.reportException(context.Background(), CodeInternalError, err.Error())
	a.failCurrentAndAdvance(CodeInternalError, err.Error())
	logger.Error("media start failed", "error", err, "messageId", recordID(current))
}

func (a *Agent) loseForeground() {
	current := a.currentRecord()
	if current == nil || a.machine.Current() != playback.Playing {
		a.machine.SetDesired(playback.Finished)
		return
	}
	a.machine.SetDesired(playback.Finished)
	from := a.machine.Current()
	a.machine.Transition(playback.LosingFocus)
	a.observers.Notify(current.MessageID, current.Token, from, playback.LosingFocus)
	events.NewEmitter(a.bus, current.MessageID, current.Token).FocusChanged(a.cfg.Channel, "FOREGROUND", "BACKGROUND")
	logger.FocusTransition(current.MessageID, "FOREGROUND", "BACKGROUND")

	if err := a.media.Stop(); err != nil {
		logger.Warn("stop on focus loss failed", "error", err, "messageId", current.MessageID)
	}
}

// OnPlaybackStarted is the MediaPlayer observer callback confirming
// playback began. The PLAYING transition already happened synchronously
// when Play() returned without error (spec §4.4 treats the focus grant,
// not this callback, as the trigger), so this is logging only.
func (a *Agent) OnPlaybackStarted() {
	logger.Debug("media reported playback started")
}

// OnPlaybackFinished is the MediaPlayer observer callback for a clean end
// of stream; it may arrive from any goroutine.
func (a *Agent) OnPlaybackFinished() {
	a.exec.Submit(a.finishCurrent)
}

// OnPlaybackError is the MediaPlayer observer callback for a mid-stream
// failure; it may arrive from any goroutine.
func (a *Agent) OnPlaybackError(errType contracts.MediaPlayerErrorType, message string) {
	a.exec.Submit(func() { a.errorCurrent(string(errType), message) })
}

func (a *Agent) finishCurrent() {
	current := a.currentRecord()
	if current == nil {
		return
	}

	emitter := events.NewEmitter(a.bus, current.MessageID, current.Token)
	if current.ClearFinished() {
		emitter.SpeechFinished()
		a.sendEvent(current.Token, "SpeechFinished")
		metrics.RecordEventEmitted("SpeechFinished")
	}
	if current.ClearCompleted() && current.ResultCallback != nil {
		current.ResultCallback.SetCompleted()
	}
	emitter.DirectiveRetired("finished")
	logger.DirectiveRetired(current.MessageID, "finished")
	metrics.RecordDirectiveOutcome("completed")

	a.retireAndAdvance(current, playback.Finished, "finished")
}

func (a *Agent) errorCurrent(errType, message string) {
	current := a.currentRecord()
	if current == nil {
		return
	}

	a.reportException(context.Background(), errType, message)
	current.ClearFinished() // suppressed: no SpeechFinished on error
	if current.ClearCompleted() && current.ResultCallback != nil {
		current.ResultCallback.SetFailed(message)
	}
	events.NewEmitter(a.bus, current.MessageID, current.Token).DirectiveRetired("error: " + message)
	logger.DirectiveRetired(current.MessageID, "error: "+message)
	metrics.RecordDirectiveOutcome("failed")

	a.retireAndAdvance(current, playback.Finished, "error")
}

// Cancel discards messageID. If it is the current speaker, playback stops
// and no SpeechFinished is emitted; if it is only queued, it is removed
// from the queue and map and its failure is reported upstream immediately
// (spec §4.7, resolving the open question on cancel-while-queued).
func (a *Agent) Cancel(messageID string) {
	a.exec.Submit(func() { a.cancel(messageID) })
}

func (a *Agent) cancel(messageID string) {
	current := a.currentRecord()
	if current != nil && current.MessageID == messageID {
		if err := a.media.Stop(); err != nil {
			logger.Warn("stop on cancel failed", "error", err, "messageId", messageID)
		}
		current.ClearFinished()
		current.ClearCompleted()
		emitter := events.NewEmitter(a.bus, current.MessageID, current.Token)
		emitter.DirectiveCancelled(a.machine.Current() == playback.Playing)
		emitter.DirectiveRetired("cancelled")
		logger.DirectiveRetired(current.MessageID, "cancelled")
		metrics.RecordDirectiveOutcome("cancelled")
		a.retireAndAdvance(current, playback.Finished, "cancelled")
		return
	}

	r := a.store.Lookup(messageID)
	if r == nil {
		return
	}
	if a.store.RemoveFromQueue(messageID) {
		a.store.Remove(messageID)
		if r.ClearCompleted() && r.ResultCallback != nil {
			r.ResultCallback.SetFailed(CodeCancelled)
		}
		emitter := events.NewEmitter(a.bus, r.MessageID, r.Token)
		emitter.DirectiveCancelled(false)
		emitter.DirectiveRetired("cancelled while queued")
		logger.DirectiveRetired(r.MessageID, "cancelled while queued")
		metrics.RecordDirectiveOutcome("cancelled")
		metrics.SetQueueDepth(a.store.QueueLen())
	}
}

// ProvideState computes and publishes the current context report for
// token, on demand from the context manager (spec §4.6).
func (a *Agent) ProvideState(ctx context.Context, token string) error {
	current := a.currentRecord()
	state := a.machine.Current()
	var offset contextreport.OffsetSource
	if a.media != nil {
		offset = a.media
	}
	if current == nil || current.Token != token {
		// Reporting state for a token that is not the current speaker (or
		// when nothing is current) resolves to FINISHED with no offset,
		// matching the collapse rule.
		state = playback.Finished
		offset = nil
	}
	return a.ctxProvider.Publish(ctx, token, state, offset)
}

func (a *Agent) publishContext(r *directive.Record) {
	state := a.machine.Current()
	if !contextreport.ShouldRefresh(state) {
		return
	}
	var offset contextreport.OffsetSource
	if a.media != nil {
		offset = a.media
	}
	if err := a.ctxProvider.Publish(context.Background(), r.Token, state, offset); err != nil {
		logger.Warn("context publish failed", "error", err, "messageId", r.MessageID)
		return
	}
	metrics.RecordEventEmitted("ContextPublished")
	offsetMs := int64(0)
	if offset != nil {
		offsetMs = offset.OffsetMilliseconds()
	}
	events.NewEmitter(a.bus, r.MessageID, r.Token).ContextPublished(offsetMs, state.ContextActivity())
}

// retireAndAdvance releases resources held by r, clears it as current,
// releases foreground focus, removes it from the store, and activates the
// next queued record (if any). outcome labels the playback duration
// histogram when playback actually started; it is ignored otherwise.
// Executor-goroutine only.
func (a *Agent) retireAndAdvance(r *directive.Record, to playback.State, outcome string) {
	from := a.machine.Current()
	a.machine.Transition(to)
	a.observers.Notify(r.MessageID, r.Token, from, to)
	a.publishContext(r)

	if !a.playStarted.IsZero() {
		metrics.RecordPlaybackDuration(outcome, time.Since(a.playStarted).Seconds())
		a.playStarted = time.Time{}
	}

	if err := r.ReleaseReader(); err != nil {
		logger.Warn("attachment release failed", "error", err, "messageId", r.MessageID)
	}
	if err := a.focus.ReleaseChannel(a.cfg.Channel); err != nil {
		logger.Warn("release focus failed", "error", err, "messageId", r.MessageID)
	}

	a.machine.SetCurrentRecord(nil)
	a.store.Remove(r.MessageID)
	a.machine.SetDesired(playback.Finished)

	metrics.SetQueueDepth(a.store.QueueLen())

	if next := a.store.DequeueHead(); next != nil {
		a.activate(next)
	}
}

func (a *Agent) failCurrentAndAdvance(code, description string) {
	current := a.currentRecord()
	if current == nil {
		return
	}
	current.ClearFinished()
	if current.ClearCompleted() && current.ResultCallback != nil {
		current.ResultCallback.SetFailed(code)
	}
	a.retireAndAdvance(current, playback.Finished, "error")
}

// Shutdown fails the current and every queued directive with a shutdown
// description, releases focus and the executor, and unsubscribes from
// media-player observation. Safe to call more than once. It waits up to
// cfg.ShutdownTimeout for the drain to finish; if that elapses, Shutdown
// returns anyway and the drain completes on its own in the background, so a
// wedged collaborator cannot hang the caller indefinitely.
func (a *Agent) Shutdown() {
	a.shuttingDown.Do(func() {
		timeout := a.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}

		drained := a.exec.SubmitAndWaitTimeout(func() {
			if current := a.currentRecord(); current != nil {
				if err := a.media.Stop(); err != nil {
					logger.Warn("stop during shutdown failed", "error", err, "messageId", current.MessageID)
				}
				current.ClearFinished()
				if current.ClearCompleted() && current.ResultCallback != nil {
					current.ResultCallback.SetFailed(CodeShuttingDown)
				}
				from := a.machine.Current()
				a.machine.Transition(playback.Finished)
				a.observers.Notify(current.MessageID, current.Token, from, playback.Finished)
				_ = current.ReleaseReader()
				if err := a.focus.ReleaseChannel(a.cfg.Channel); err != nil {
					logger.Warn("release focus during shutdown failed", "error", err)
				}
				a.machine.SetCurrentRecord(nil)
				a.store.Remove(current.MessageID)
				if !a.playStarted.IsZero() {
					metrics.RecordPlaybackDuration("cancelled", time.Since(a.playStarted).Seconds())
					a.playStarted = time.Time{}
				}
				metrics.RecordDirectiveOutcome("failed")
			}

			for _, r := range a.store.DrainQueue() {
				a.store.Remove(r.MessageID)
				if r.ClearCompleted() && r.ResultCallback != nil {
					r.ResultCallback.SetFailed(CodeShuttingDown)
				}
				metrics.RecordDirectiveOutcome("failed")
			}
			a.machine.SetDesired(playback.Finished)
			metrics.SetQueueDepth(0)
		}, timeout)

		finish := func() {
			a.exec.Shutdown()
			if a.media != nil {
				a.media.SetObserver(nil)
			}
		}
		if drained {
			finish()
		} else {
			logger.Warn("shutdown drain exceeded timeout, finishing in background", "timeout", timeout)
			go finish()
		}
	})
}

func (a *Agent) currentRecord() *directive.Record {
	r, _ := a.machine.CurrentRecord().(*directive.Record)
	return r
}

func (a *Agent) sendEvent(token, name string) {
	if a.sender == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Token string `json:"token"`
	}{Token: token})
	if err != nil {
		return
	}
	if err := a.sender.SendEvent(context.Background(), a.cfg.Namespace, name, payload); err != nil {
		logger.Warn("send event failed", "error", err, "name", name)
	}
}

// reportException reports against whatever record is currently active.
// Only valid on the executor goroutine, for failures discovered while
// handling the current record.
func (a *Agent) reportException(ctx context.Context, code, description string) {
	current := a.currentRecord()
	token := ""
	messageID := ""
	if current != nil {
		token = current.Token
		messageID = current.MessageID
	}
	a.reportExceptionFor(ctx, messageID, token, code, description)
}

// reportExceptionFor reports against an explicit messageId/token, for
// failures discovered before a record becomes (or regardless of) the
// current speaker -- e.g. a malformed PreHandle, which must not be
// misattributed to whatever happens to be playing concurrently.
func (a *Agent) reportExceptionFor(ctx context.Context, messageID, token, code, description string) {
	events.NewEmitter(a.bus, messageID, token).ExceptionReported(code, description)

	payload, err := json.Marshal(events.ExceptionPayload{Code: code, Description: description})
	if err != nil {
		return
	}
	if a.sender != nil {
		if err := a.sender.SendEvent(ctx, "System", "Exception", payload); err != nil {
			logger.Warn("exception report send failed", "error", err)
		}
	}
}

func recordID(r *directive.Record) string {
	if r == nil {
		return ""
	}
	return r.MessageID
}
