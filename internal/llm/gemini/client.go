package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"resume-review/internal/llm"
	"resume-review/internal/shared/storage/object"
)

const pdfMIMEType = "application/pdf"

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API. The stored PDF is sent
// inline next to the instructions, so no text extraction happens here.
type Client struct {
	models generator
	model  string
	store  object.Store
}

// NewClient constructs a Gemini client reading resumes from store.
func NewClient(ctx context.Context, apiKey, model string, store object.Store) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	if store == nil {
		return nil, fmt.Errorf("gemini client needs an object store")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: gc.Models, model: model, store: store}, nil
}

// Feedback uploads the resume bytes with the instructions and returns every
// text part of the first candidate as list content.
func (c *Client) Feedback(ctx context.Context, owner, filePath, instructions string) (*llm.Response, error) {
	data, err := c.store.Read(ctx, owner, filePath)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, pdfMIMEType),
			genai.NewPartFromText(instructions),
		}, genai.RoleUser),
	}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp.UsageMetadata != nil {
		log.Printf("gemini usage model=%s prompt_tokens=%d output_tokens=%d",
			c.model, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var parts []llm.Part
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Text == "" || p.Thought {
			continue
		}
		parts = append(parts, llm.Part{Type: "text", Text: p.Text})
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &llm.Response{Message: llm.Message{
		Role:    "assistant",
		Content: llm.PartsContent(parts...),
	}}, nil
}
