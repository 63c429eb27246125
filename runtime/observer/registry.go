// Package observer implements the playback observer registry: the fan-out
// of state transitions to every party watching this utterance, in the
// order the transitions actually occurred.
package observer

import (
	"sync"

	"github.com/skaggar/speechsynthesizer/runtime/playback"
)

// Observer receives a callback for every playback state transition, in the
// same order the transitions occurred (spec I5).
type Observer interface {
	OnTransition(messageID, token string, from, to playback.State)
}

// Registry holds the set of subscribed observers and dispatches
// transitions to all of them synchronously and in registration order.
//
// Add and Remove take the same lock Notify holds for the full duration of
// dispatch. This is deliberate: an observer that calls Remove on itself (or
// any other observer) from inside OnTransition will deadlock. That is the
// documented behavior (spec §4.5) rather than a bug -- observers must
// unsubscribe from outside their own callback.
type Registry struct {
	mu        sync.Mutex
	observers []Observer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers o. Safe to call concurrently with Notify for other
// in-flight transitions, but will block until any currently-dispatching
// Notify call returns.
func (r *Registry) Add(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Remove unregisters o. Must never be called from within an OnTransition
// callback; doing so deadlocks against the Notify call that is dispatching.
func (r *Registry) Remove(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers one transition to every registered observer, in
// registration order, holding the registry lock for the whole dispatch so
// that no Add or Remove can interleave mid-notification.
func (r *Registry) Notify(messageID, token string, from, to playback.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.observers {
		o.OnTransition(messageID, token, from, to)
	}
}

// Len reports the number of currently registered observers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}
