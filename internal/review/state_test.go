package review

import (
	"errors"
	"testing"
)

func TestSubmissionHappyPath(t *testing.T) {
	var seen []State
	sub := NewSubmission(func(from State, p Progress) { seen = append(seen, p.State) })

	steps := []State{StateUploading, StateConverting, StatePersisting, StateAnalyzing, StateDone}
	for _, next := range steps {
		if err := sub.Advance(next, string(next)); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}
	if len(seen) != len(steps) {
		t.Fatalf("expected %d observations, got %d", len(steps), len(seen))
	}
	if sub.Progress().HasError {
		t.Fatalf("done must not report an error")
	}
}

func TestSubmissionRejectsSkipsAndReentry(t *testing.T) {
	sub := NewSubmission(nil)
	if err := sub.Advance(StateConverting, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected skip to be rejected, got %v", err)
	}
	_ = sub.Advance(StateUploading, "")
	if err := sub.Advance(StateUploading, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected re-entry to be rejected, got %v", err)
	}
	if err := sub.Advance(StateIdle, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected backwards move to be rejected, got %v", err)
	}
}

func TestSubmissionFailIsTerminal(t *testing.T) {
	sub := NewSubmission(nil)
	_ = sub.Advance(StateUploading, "up")
	if err := sub.Fail("boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	p := sub.Progress()
	if p.State != StateFailed || !p.HasError || p.StatusText != "boom" {
		t.Fatalf("unexpected progress %+v", p)
	}
	if err := sub.Fail("again"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected failed to be terminal, got %v", err)
	}
	if err := sub.Advance(StateConverting, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no advance after failure, got %v", err)
	}
	if err := sub.SetStatus("x"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected no status update after failure, got %v", err)
	}
}

func TestSubmissionSetStatusKeepsState(t *testing.T) {
	sub := NewSubmission(nil)
	if err := sub.SetStatus("early"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("idle must not accept status, got %v", err)
	}
	_ = sub.Advance(StateUploading, "a")
	_ = sub.Advance(StateConverting, "b")
	_ = sub.Advance(StatePersisting, StatusUploadingImage)
	if err := sub.SetStatus(StatusProcessing); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if sub.State() != StatePersisting || sub.Progress().StatusText != StatusProcessing {
		t.Fatalf("unexpected progress %+v", sub.Progress())
	}
}

func TestTrackerBusyAndReset(t *testing.T) {
	tr := NewTracker()
	if got := tr.Snapshot("u").State; got != StateIdle {
		t.Fatalf("expected idle snapshot, got %s", got)
	}
	if err := tr.Begin("u"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tr.Begin("u"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	if err := tr.Begin("other"); err != nil {
		t.Fatalf("other owner must not be blocked: %v", err)
	}
	tr.Update("u", Progress{State: StateFailed, HasError: true, StatusText: "x"})
	if err := tr.Reset("u"); !errors.Is(err, ErrBusy) {
		t.Fatalf("reset while busy must fail, got %v", err)
	}
	tr.End("u")
	if got := tr.Snapshot("u"); got.State != StateFailed {
		t.Fatalf("snapshot must survive End, got %+v", got)
	}
	if err := tr.Reset("u"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := tr.Snapshot("u").State; got != StateIdle {
		t.Fatalf("expected idle after reset, got %s", got)
	}
}
