package events

import "encoding/json"

// Event is the payload describing a finished submission.
type Event struct {
	ResumeID   string `json:"resumeId,omitempty"`
	Owner      string `json:"owner"`
	Status     string `json:"status"`
	StatusText string `json:"statusText"`
	DurationMs int64  `json:"durationMs"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// EncodeEvent returns the JSON representation of an event.
func EncodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent parses a JSON payload into an Event.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}
