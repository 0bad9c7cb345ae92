// Package gemini answers aisearch prompts with Google's Gemini models.
//
// The Gen AI SDK starts goroutines from package init, so only the binary
// imports this package; aisearch and the dashboard stay free of it.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
)

var _ aisearch.Generator = (*Generator)(nil)

const (
	DefaultModel    = "gemini-2.0-flash-lite"
	temperature     = 0.1
	maxOutputTokens = 256
)

// Generator implements aisearch.Generator through the Google Gen AI SDK.
type Generator struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, aisearch.ErrNotConfigured
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
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	// An empty reply parses as no match.
	return resp.Text(), nil
}
