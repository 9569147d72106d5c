// Package feedback holds the structured review returned by the AI service
// and the parser that recovers it from a chat reply.
package feedback

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Tip types.
const (
	TipGood    = "good"
	TipImprove = "improve"
)

// Tip is one observation inside a category.
type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
}

// Category is a scored section with its ordered tips.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the full review. Scores are expected in [0,100].
type Feedback struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ATS"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

const (
	jsonFence = "```json"
	fence     = "```"
)

// Unwrap strips one leading code fence (```json or ```) and one trailing
// fence, trimming whitespace and byte order marks before and after.
func Unwrap(text string) string {
	out := trim(text)
	if strings.HasPrefix(out, jsonFence) {
		out = out[len(jsonFence):]
	} else if strings.HasPrefix(out, fence) {
		out = out[len(fence):]
	}
	if strings.HasSuffix(out, fence) {
		out = out[:len(out)-len(fence)]
	}
	return trim(out)
}

func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Parse unwraps text and decodes it. Any JSON error is returned as is.
func Parse(text string) (Feedback, error) {
	var fb Feedback
	if err := json.Unmarshal([]byte(Unwrap(text)), &fb); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}
