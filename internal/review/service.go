// Package review runs the resume submission pipeline and serves stored reviews.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-review/internal/convert"
	"resume-review/internal/events"
	"resume-review/internal/feedback"
	"resume-review/internal/intake"
	"resume-review/internal/llm"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/storage/kv"
	"resume-review/internal/shared/storage/object"
	"resume-review/internal/shared/telemetry"
)

// Status texts shown while a submission runs.
const (
	StatusUploading      = "Uploading the file..."
	StatusConverting     = "Converting to image..."
	StatusUploadingImage = "Uploading the image..."
	StatusProcessing     = "Processing data..."
	StatusAnalyzing      = "Analyzing your resume with AI (this may take a minute)..."
	StatusDone           = "Analysis complete, redirecting..."
)

// Failure texts.
const (
	StatusUploadFailed      = "Error: Failed to upload the File. Please make sure you are logged in."
	StatusImageUploadFailed = "Failed to upload image."
	StatusAnalyzeFailed     = "Error: failed to analyze resume. Please try again."
	StatusNoFile            = "Please select a PDF file to upload."

	defaultConversionReason = "Failed to convert PDF to image"
	defaultErrorMessage     = "Something went wrong. Please try again."
)

var (
	// ErrNotFound is returned when a record does not exist for the owner.
	ErrNotFound = errors.New("resume not found")

	errNoFeedback = errors.New("no feedback returned")
)

// FailureKind classifies where a submission stopped.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureUpload      FailureKind = "upload"
	FailureConversion  FailureKind = "conversion"
	FailureImageUpload FailureKind = "image_upload"
	FailurePersist     FailureKind = "persist"
	FailureAnalysis    FailureKind = "analysis"
	FailureParse       FailureKind = "parse"
)

// Input is one submission request.
type Input struct {
	FileName       string
	ContentType    string
	Data           []byte
	CompanyName    string
	JobTitle       string
	JobDescription string
}

// Outcome is the terminal result of Submit.
type Outcome struct {
	ResumeID   string      `json:"id,omitempty"`
	State      State       `json:"state"`
	StatusText string      `json:"statusText"`
	HasError   bool        `json:"hasError"`
	Failure    FailureKind `json:"failure,omitempty"`
	Err        error       `json:"-"`
}

// Service wires the pipeline to its collaborators.
type Service struct {
	Files     object.Store
	KV        kv.Store
	AI        llm.Client
	Converter *convert.Converter
	Tracker   *Tracker
	Events    events.Publisher
	NewID     func() string
	Now       func() time.Time
}

// Submit runs the whole pipeline for owner. The only error returns are
// ErrBusy and intake.ErrSelectionRejected; every pipeline failure is reported
// through the Outcome.
func (s *Service) Submit(ctx context.Context, owner string, in Input) (Outcome, error) {
	if err := intake.Check(intake.File{
		Name:        in.FileName,
		Size:        int64(len(in.Data)),
		ContentType: in.ContentType,
		Head:        head(in.Data),
	}); err != nil {
		return Outcome{}, err
	}
	tracker := s.tracker()
	if err := tracker.Begin(owner); err != nil {
		return Outcome{}, err
	}
	defer tracker.End(owner)

	start := s.now()
	metrics.IncSubmissionStarted()

	sub := NewSubmission(func(from State, p Progress) {
		tracker.Update(owner, p)
		telemetry.Info("submission.transition", map[string]any{
			"user_id":           owner,
			"resume_id":         p.ResumeID,
			"status_transition": string(from) + "->" + string(p.State),
			"status_text":       p.StatusText,
		})
	})
	sub.now = s.now

	out := s.run(ctx, owner, in, sub)
	duration := s.now().Sub(start)
	metrics.ObserveSubmissionDurationMs(float64(duration.Milliseconds()))
	if out.HasError {
		metrics.IncSubmissionFailed()
		telemetry.Warn("submission.failed", map[string]any{
			"user_id":   owner,
			"resume_id": out.ResumeID,
			"failure":   string(out.Failure),
			"err":       out.Err,
		})
	} else {
		metrics.IncSubmissionCompleted()
	}
	s.publish(ctx, owner, out, duration)
	return out, nil
}

func (s *Service) run(ctx context.Context, owner string, in Input, sub *Submission) Outcome {
	_ = sub.Advance(StateUploading, StatusUploading)
	uploaded, err := s.Files.Upload(ctx, owner, in.FileName, in.ContentType, bytes.NewReader(in.Data))
	if err != nil {
		return fail(sub, FailureUpload, StatusUploadFailed, err)
	}

	_ = sub.Advance(StateConverting, StatusConverting)
	res := s.converter().FirstPage(ctx, in.FileName, in.Data)
	if res.File == nil {
		reason := strings.TrimSpace(res.Err)
		if reason == "" {
			reason = defaultConversionReason
		}
		return fail(sub, FailureConversion, "Conversion failed: "+reason, errors.New(reason))
	}

	_ = sub.Advance(StatePersisting, StatusUploadingImage)
	image, err := s.Files.Upload(ctx, owner, res.File.Name, res.File.ContentType, bytes.NewReader(res.File.Data))
	if err != nil {
		return fail(sub, FailureImageUpload, StatusImageUploadFailed, err)
	}

	_ = sub.SetStatus(StatusProcessing)
	rec := Record{
		ID:             s.newID(),
		ResumePath:     uploaded.Path,
		ImagePath:      image.Path,
		CompanyName:    in.CompanyName,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
	}
	if err := s.save(ctx, owner, rec); err != nil {
		return fail(sub, FailurePersist, errorText(err), err)
	}
	sub.SetResumeID(rec.ID)

	_ = sub.Advance(StateAnalyzing, StatusAnalyzing)
	resp, err := s.ai().Feedback(ctx, owner, uploaded.Path, PrepareInstructions(in.JobTitle, in.JobDescription))
	if err != nil {
		return fail(sub, FailureAnalysis, errorText(err), err)
	}
	if resp == nil {
		return fail(sub, FailureAnalysis, StatusAnalyzeFailed, errNoFeedback)
	}
	fb, err := feedback.Parse(resp.Message.Content.Text())
	if err != nil {
		return fail(sub, FailureParse, errorText(err), err)
	}

	rec.Feedback = &fb
	if err := s.save(ctx, owner, rec); err != nil {
		return fail(sub, FailurePersist, errorText(err), err)
	}
	_ = sub.Advance(StateDone, StatusDone)
	return outcome(sub, FailureNone, nil)
}

func fail(sub *Submission, kind FailureKind, statusText string, err error) Outcome {
	_ = sub.Fail(statusText)
	return outcome(sub, kind, err)
}

func outcome(sub *Submission, kind FailureKind, err error) Outcome {
	p := sub.Progress()
	return Outcome{
		ResumeID:   p.ResumeID,
		State:      p.State,
		StatusText: p.StatusText,
		HasError:   p.HasError,
		Failure:    kind,
		Err:        err,
	}
}

func errorText(err error) string {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = defaultErrorMessage
	}
	return "Error: " + msg
}

func (s *Service) save(ctx context.Context, owner string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.KV.Set(ctx, owner, RecordKey(rec.ID), string(payload))
}

func (s *Service) publish(ctx context.Context, owner string, out Outcome, d time.Duration) {
	if s.Events == nil {
		return
	}
	status := "done"
	if out.HasError {
		status = "failed"
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := s.Events.Publish(pubCtx, events.Event{
		ResumeID:   out.ResumeID,
		Owner:      object.OwnerRoot(owner),
		Status:     status,
		StatusText: out.StatusText,
		DurationMs: d.Milliseconds(),
		OccurredAt: s.now().UTC().Format(time.RFC3339),
		Version:    1,
	})
	if err != nil {
		telemetry.Warn("submission.event_failed", map[string]any{
			"user_id":   owner,
			"resume_id": out.ResumeID,
			"err":       err,
		})
	}
}

// Progress returns the latest snapshot for owner.
func (s *Service) Progress(owner string) Progress {
	return s.tracker().Snapshot(owner)
}

// ResetProgress clears a finished snapshot. It returns ErrBusy mid-run.
func (s *Service) ResetProgress(owner string) error {
	return s.tracker().Reset(owner)
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, owner, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	raw, ok, err := s.KV.Get(ctx, owner, RecordKey(id))
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return rec, nil
}

// List returns every record of owner, pending ones included. Values that do
// not decode are logged and skipped.
func (s *Service) List(ctx context.Context, owner string) ([]Record, error) {
	items, err := s.KV.List(ctx, owner, keyPrefix+"*", true)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item.Value), &rec); err != nil {
			telemetry.Warn("review.record_decode_failed", map[string]any{
				"user_id": owner,
				"key":     item.Key,
				"err":     err,
			})
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadFile returns a stored blob of owner.
func (s *Service) ReadFile(ctx context.Context, owner, path string) ([]byte, error) {
	data, err := s.Files.Read(ctx, owner, path)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) tracker() *Tracker {
	if s.Tracker == nil {
		s.Tracker = NewTracker()
	}
	return s.Tracker
}

func (s *Service) converter() *convert.Converter {
	if s.Converter == nil {
		return convert.New(convert.DefaultScale)
	}
	return s.Converter
}

func (s *Service) ai() llm.Client {
	if s.AI == nil {
		return llm.PlaceholderClient{}
	}
	return s.AI
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func head(data []byte) []byte {
	if len(data) > 3072 {
		return data[:3072]
	}
	return data
}
