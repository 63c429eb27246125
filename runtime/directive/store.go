package directive

import "sync"

// Store tracks every pre-handled-but-not-retired Record by message id and
// maintains the FIFO queue of records awaiting activation.
//
// It carries two of the three mutexes named in the locking discipline: one
// for the id map, one for the pending queue. Callers that need both acquire
// them in {queue, map} order via the methods below, which already respect
// that ordering internally; external code should never lock either mutex
// directly.
type Store struct {
	queueMu sync.Mutex
	queue   []*Record

	mapMu   sync.Mutex
	records map[string]*Record

	// onActivate is invoked, outside both locks, exactly when enqueue finds
	// the queue was empty and hasCurrent reports false -- i.e. when this
	// record should become the new current speaker.
	onActivate func(*Record)

	// hasCurrent reports whether a record is presently the active speaker.
	// Supplied by the coordinator so the Store never has to know about
	// playback state directly.
	hasCurrent func() bool
}

// NewStore creates an empty Store. hasCurrent and onActivate wire the Store
// to the coordinator's notion of "is something currently playing" and
// "begin playing this record" respectively.
func NewStore(hasCurrent func() bool, onActivate func(*Record)) *Store {
	return &Store{
		records:    make(map[string]*Record),
		hasCurrent: hasCurrent,
		onActivate: onActivate,
	}
}

// Register inserts a fresh record keyed by MessageID. Returns false without
// modifying the store if MessageID is already mapped (duplicate directive).
func (s *Store) Register(r *Record) bool {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.records[r.MessageID]; exists {
		return false
	}
	s.records[r.MessageID] = r
	return true
}

// Lookup returns the record for messageID, or nil if none is tracked.
func (s *Store) Lookup(messageID string) *Record {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	return s.records[messageID]
}

// Remove deletes messageID from the map. It does not touch the queue; callers
// cancelling a queued record must also remove it via RemoveFromQueue.
func (s *Store) Remove(messageID string) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	delete(s.records, messageID)
}

// Enqueue appends r to the pending queue. If the queue was empty and no
// record is currently active, onActivate(r) fires synchronously after the
// queue lock is released, making r the new current record.
func (s *Store) Enqueue(r *Record) {
	s.queueMu.Lock()
	wasEmpty := len(s.queue) == 0
	s.queue = append(s.queue, r)
	s.queueMu.Unlock()

	if wasEmpty && s.hasCurrent != nil && !s.hasCurrent() && s.onActivate != nil {
		s.onActivate(r)
	}
}

// DequeueHead removes and returns the head of the pending queue, or nil if
// the queue is empty.
func (s *Store) DequeueHead() *Record {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if len(s.queue) == 0 {
		return nil
	}
	head := s.queue[0]
	s.queue = s.queue[1:]
	return head
}

// RemoveFromQueue removes messageID from the pending queue if present,
// preserving FIFO order of the remaining entries. Reports whether it found
// and removed an entry.
func (s *Store) RemoveFromQueue(messageID string) bool {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	for i, r := range s.queue {
		if r.MessageID == messageID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// QueueLen reports the number of records currently pending activation.
func (s *Store) QueueLen() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return len(s.queue)
}

// DrainQueue removes and returns every pending record in FIFO order,
// leaving the queue empty. Used by shutdown to fail queued directives
// without activating them.
func (s *Store) DrainQueue() []*Record {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	drained := s.queue
	s.queue = nil
	return drained
}
