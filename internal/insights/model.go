package insights

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-3-pro-preview"

// Model produces text for a prompt
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// GeminiModel generates text through the Gemini API
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewModel creates a Gemini-backed model. It returns a nil Model when no
// API key is configured.
func NewModel(ctx context.Context, apiKey, model string) (Model, error) {
	if apiKey == "" {
		return nil, nil
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{client: client, model: model}, nil
}

// Generate sends a single-turn prompt and returns the response text
func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the configured model name
func (g *GeminiModel) Name() string {
	return g.model
}
