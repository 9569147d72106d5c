package review

import (
	"bytes"
	"encoding/json"
	"strings"

	"resume-review/internal/feedback"
)

const keyPrefix = "resume:"

// RecordKey returns the key-value key for a submission id.
func RecordKey(id string) string {
	return keyPrefix + id
}

// Record is the stored submission. A nil Feedback is the pending form and is
// written as an empty string.
type Record struct {
	ID             string
	ResumePath     string
	ImagePath      string
	CompanyName    string
	JobTitle       string
	JobDescription string
	Feedback       *feedback.Feedback
}

// Pending reports whether analysis has not been attached yet.
func (r Record) Pending() bool {
	return r.Feedback == nil
}

type recordJSON struct {
	ID             string          `json:"id"`
	ResumePath     string          `json:"resumePath"`
	ImagePath      string          `json:"imagePath"`
	CompanyName    string          `json:"companyName"`
	JobTitle       string          `json:"jobTitle"`
	JobDescription string          `json:"jobDescription"`
	Feedback       json.RawMessage `json:"feedback"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	fb := json.RawMessage(`""`)
	if r.Feedback != nil {
		raw, err := json.Marshal(r.Feedback)
		if err != nil {
			return nil, err
		}
		fb = raw
	}
	return json.Marshal(recordJSON{
		ID:             r.ID,
		ResumePath:     r.ResumePath,
		ImagePath:      r.ImagePath,
		CompanyName:    r.CompanyName,
		JobTitle:       r.JobTitle,
		JobDescription: r.JobDescription,
		Feedback:       fb,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Empty, null and "" feedback all
// decode as pending; a non-empty string is parsed as fenced feedback text.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		ID:             raw.ID,
		ResumePath:     raw.ResumePath,
		ImagePath:      raw.ImagePath,
		CompanyName:    raw.CompanyName,
		JobTitle:       raw.JobTitle,
		JobDescription: raw.JobDescription,
	}

	fb := bytes.TrimSpace(raw.Feedback)
	if len(fb) == 0 || bytes.Equal(fb, []byte("null")) {
		return nil
	}
	if fb[0] == '"' {
		var text string
		if err := json.Unmarshal(fb, &text); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}
		parsed, err := feedback.Parse(text)
		if err != nil {
			return err
		}
		r.Feedback = &parsed
		return nil
	}
	var parsed feedback.Feedback
	if err := json.Unmarshal(fb, &parsed); err != nil {
		return err
	}
	r.Feedback = &parsed
	return nil
}
