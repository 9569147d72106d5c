package review

import (
	"errors"
	"sync"
)

// ErrBusy is returned while the owner already has a submission in flight.
var ErrBusy = errors.New("a submission is already in progress")

// Tracker enforces one in-flight submission per owner and keeps the latest
// progress snapshot for polling.
type Tracker struct {
	mu     sync.Mutex
	busy   map[string]bool
	latest map[string]Progress
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		busy:   make(map[string]bool),
		latest: make(map[string]Progress),
	}
}

// Begin marks owner busy or returns ErrBusy.
func (t *Tracker) Begin(owner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy[owner] {
		return ErrBusy
	}
	t.busy[owner] = true
	delete(t.latest, owner)
	return nil
}

// Update stores the latest snapshot for owner.
func (t *Tracker) Update(owner string, p Progress) {
	t.mu.Lock()
	t.latest[owner] = p
	t.mu.Unlock()
}

// End clears the busy flag; the last snapshot stays readable.
func (t *Tracker) End(owner string) {
	t.mu.Lock()
	delete(t.busy, owner)
	t.mu.Unlock()
}

// Busy reports whether owner has a submission in flight.
func (t *Tracker) Busy(owner string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy[owner]
}

// Snapshot returns the latest progress, or an idle snapshot.
func (t *Tracker) Snapshot(owner string) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.latest[owner]; ok {
		return p
	}
	return Progress{State: StateIdle}
}

// Reset forgets a finished snapshot. It refuses while a submission runs.
func (t *Tracker) Reset(owner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy[owner] {
		return ErrBusy
	}
	delete(t.latest, owner)
	return nil
}
