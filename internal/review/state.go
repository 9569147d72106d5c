package review

import (
	"errors"
	"fmt"
	"time"
)

// State is a step of a submission.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateConverting State = "converting"
	StatePersisting State = "persisting"
	StateAnalyzing  State = "analyzing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// ErrInvalidTransition is returned for any move the state machine forbids.
var ErrInvalidTransition = errors.New("invalid submission state transition")

var nextState = map[State]State{
	StateIdle:       StateUploading,
	StateUploading:  StateConverting,
	StateConverting: StatePersisting,
	StatePersisting: StateAnalyzing,
	StateAnalyzing:  StateDone,
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Progress is a point-in-time view of a submission.
type Progress struct {
	State      State     `json:"state"`
	StatusText string    `json:"statusText"`
	HasError   bool      `json:"hasError"`
	ResumeID   string    `json:"resumeId,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Submission walks idle -> uploading -> converting -> persisting ->
// analyzing -> done, or from any non-terminal state to failed.
type Submission struct {
	state      State
	statusText string
	resumeID   string
	now        func() time.Time
	observe    func(from State, p Progress)
}

// NewSubmission returns an idle submission. observe, if set, is called after
// every change.
func NewSubmission(observe func(from State, p Progress)) *Submission {
	return &Submission{state: StateIdle, now: time.Now, observe: observe}
}

// State returns the current state.
func (s *Submission) State() State { return s.state }

// Advance moves to the next state in the fixed order.
func (s *Submission) Advance(next State, statusText string) error {
	if want, ok := nextState[s.state]; !ok || want != next {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
	}
	s.set(next, statusText)
	return nil
}

// SetStatus replaces the status text without changing state. Only running
// states accept it.
func (s *Submission) SetStatus(statusText string) error {
	if s.state == StateIdle || s.state.Terminal() {
		return fmt.Errorf("%w: status update in %s", ErrInvalidTransition, s.state)
	}
	s.set(s.state, statusText)
	return nil
}

// SetResumeID attaches the record id once it exists.
func (s *Submission) SetResumeID(id string) {
	s.resumeID = id
}

// Fail moves any non-terminal submission to failed.
func (s *Submission) Fail(statusText string) error {
	if s.state.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateFailed)
	}
	s.set(StateFailed, statusText)
	return nil
}

// Progress returns the current snapshot.
func (s *Submission) Progress() Progress {
	return Progress{
		State:      s.state,
		StatusText: s.statusText,
		HasError:   s.state == StateFailed,
		ResumeID:   s.resumeID,
		UpdatedAt:  s.now(),
	}
}

func (s *Submission) set(next State, statusText string) {
	from := s.state
	s.state = next
	s.statusText = statusText
	if s.observe != nil {
		s.observe(from, s.Progress())
	}
}
