// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-pro"

// GeminiBackend runs research through the Gemini API with Google Search
// grounding enabled.
type GeminiBackend struct {
	APIKey string
	Model  string
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return "gemini" }

// Configured implements Backend.
func (g *GeminiBackend) Configured() bool { return g.APIKey != "" }

// Research sends prompt as a single user turn and returns the text answer.
func (g *GeminiBackend) Research(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("gemini: missing API key: %w", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %v: %w", err, ErrUpstream)
	}

	model := g.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		},
	}

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("gemini API call failed: %v: %w", err, ErrUpstream)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty content: %w", ErrUpstream)
	}
	return text, nil
}
