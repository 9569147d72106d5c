package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Client is the AI chat capability: it reviews the stored file at filePath
// following instructions and returns a single reply message. A nil response
// with a nil error means the service produced no answer.
type Client interface {
	Feedback(ctx context.Context, owner, filePath, instructions string) (*Response, error)
}

// Response is one chat completion reply.
type Response struct {
	Message Message `json:"message"`
}

// Message carries the reply role and content.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Part is one element of a multi-part content list.
type Part struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// Content is either a plain string or a list of parts on the wire.
type Content struct {
	text  string
	parts []Part
}

// TextContent builds string content.
func TextContent(s string) Content {
	return Content{text: s}
}

// PartsContent builds list content.
func PartsContent(parts ...Part) Content {
	return Content{parts: parts}
}

// IsParts reports whether the content arrived as a list.
func (c Content) IsParts() bool {
	return c.parts != nil
}

// Text returns the string content, or the first part's text for list content.
// Remaining parts are ignored.
func (c Content) Text() string {
	if c.parts == nil {
		return c.text
	}
	if len(c.parts) == 0 {
		return ""
	}
	return c.parts[0].Text
}

// UnmarshalJSON accepts a JSON string or an array of parts.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*c = Content{}
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = Content{text: s}
		return nil
	case trimmed[0] == '[':
		parts := []Part{}
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return err
		}
		*c = Content{parts: parts}
		return nil
	default:
		return fmt.Errorf("llm: content must be a string or a list of parts")
	}
}

// MarshalJSON writes the content back in the shape it arrived in.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.parts != nil {
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no AI provider is configured.
type PlaceholderClient struct{}

// Feedback returns ErrNotImplemented.
func (PlaceholderClient) Feedback(ctx context.Context, owner, filePath, instructions string) (*Response, error) {
	_ = ctx
	_ = owner
	_ = filePath
	_ = instructions
	return nil, ErrNotImplemented
}
