package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestContentUnmarshalString(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(`{"message":{"role":"assistant","content":"hello"}}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message.Content.IsParts() {
		t.Fatalf("expected string content")
	}
	if got := resp.Message.Content.Text(); got != "hello" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestContentUnmarshalPartsUsesFirst(t *testing.T) {
	var resp Response
	raw := `{"message":{"role":"assistant","content":[{"type":"text","text":"first"},{"type":"text","text":"second"}]}}`
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Message.Content.IsParts() {
		t.Fatalf("expected parts content")
	}
	if got := resp.Message.Content.Text(); got != "first" {
		t.Fatalf("Text() = %q, want first", got)
	}
}

func TestContentRejectsObjects(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`{"text":"x"}`), &c); err == nil {
		t.Fatalf("expected error for object content")
	}
}

func TestContentMarshalPreservesShape(t *testing.T) {
	out, err := json.Marshal(PartsContent(Part{Type: "text", Text: "a"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `[{"type":"text","text":"a"}]` {
		t.Fatalf("unexpected parts json %s", out)
	}
	out, err = json.Marshal(TextContent("a"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"a"` {
		t.Fatalf("unexpected string json %s", out)
	}
}

func TestEmptyPartsText(t *testing.T) {
	if got := PartsContent().Text(); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestPlaceholderClient(t *testing.T) {
	resp, err := PlaceholderClient{}.Feedback(context.Background(), "u", "p", "i")
	if !errors.Is(err, ErrNotImplemented) || resp != nil {
		t.Fatalf("expected ErrNotImplemented, got %v %v", resp, err)
	}
}
