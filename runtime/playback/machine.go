package playback

import "sync"

// Machine tracks the current and desired playback state behind a single
// mutex (the "state" mutex in the three-mutex locking discipline). All
// mutation must come from the serial executor; observer callbacks and
// focus/media collaborators only read via Current or wait via
// WaitForDesired.
type Machine struct {
	mu      sync.Mutex
	current State
	desired State
	waiters []chan struct{}

	// currentRecord is an opaque handle to whatever the coordinator
	// considers the active speaker (a *directive.Record in practice). It
	// lives here, rather than in a mutex of its own, so "current record"
	// and "current/desired state" share the single state mutex the
	// locking discipline calls for; playback deliberately has no
	// dependency on the directive package, hence the any.
	currentRecord any
}

// NewMachine returns a Machine starting, and desiring, FINISHED.
func NewMachine() *Machine {
	return &Machine{current: Finished, desired: Finished}
}

// Current returns the present state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Desired returns the state the machine is being driven toward.
func (m *Machine) Desired() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desired
}

// SetDesired updates the target state, typically in response to a focus
// change. It does not itself transition current; the executor still drives
// the actual Transition call.
func (m *Machine) SetDesired(s State) {
	m.mu.Lock()
	m.desired = s
	m.mu.Unlock()
}

// Transition moves current to s and, if s now equals the desired state,
// wakes every goroutine blocked in WaitForDesired.
func (m *Machine) Transition(s State) {
	m.mu.Lock()
	m.current = s
	reached := m.current == m.desired
	var waiters []chan struct{}
	if reached {
		waiters = m.waiters
		m.waiters = nil
	}
	m.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
}

// SetCurrentRecord stores the coordinator's handle for the active speaker,
// or nil when no record is current.
func (m *Machine) SetCurrentRecord(r any) {
	m.mu.Lock()
	m.currentRecord = r
	m.mu.Unlock()
}

// CurrentRecord returns the coordinator's handle for the active speaker, or
// nil if none.
func (m *Machine) CurrentRecord() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentRecord
}

// HasCurrentRecord reports whether a record is presently active. Safe to
// call from any goroutine; this is what the directive Store's hasCurrent
// callback is wired to.
func (m *Machine) HasCurrentRecord() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentRecord != nil
}

// WaitForDesired blocks until current equals desired, returning immediately
// if that is already true. This is the only blocking public entry point in
// the system (onFocusChanged), standing in for a condition-variable wait
// with a one-shot channel per caller.
func (m *Machine) WaitForDesired() {
	m.mu.Lock()
	if m.current == m.desired {
		m.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	<-ch
}
