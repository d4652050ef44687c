// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pharmasage/internal/httputil"
)

// perplexityAPIURL is the chat completions endpoint. Package-level var for test substitution.
var perplexityAPIURL = "https://api.perplexity.ai/chat/completions"

// DefaultPerplexityModel is the deep research model.
const DefaultPerplexityModel = "sonar-deep-research"

// PerplexityBackend calls the Perplexity chat completions API.
type PerplexityBackend struct {
	APIKey     string
	Model      string
	MaxRetries int
	UserAgent  string
	Client     *http.Client
}

type perplexityRequest struct {
	Model     string              `json:"model"`
	Messages  []perplexityMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Text string `json:"text"`
}

// Name implements Backend.
func (p *PerplexityBackend) Name() string { return "perplexity" }

// Configured implements Backend.
func (p *PerplexityBackend) Configured() bool { return p.APIKey != "" }

// Research sends prompt as a single user message. A zero maxTokens leaves the
// limit to the API.
func (p *PerplexityBackend) Research(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("perplexity: missing API key: %w", ErrNotConfigured)
	}

	model := p.Model
	if model == "" {
		model = DefaultPerplexityModel
	}

	bodyBytes, err := json.Marshal(perplexityRequest{
		Model:     model,
		Messages:  []perplexityMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, perplexityAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, p.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("calling Perplexity API: %v: %w", err, ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("Perplexity API returned %d: %w", resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("Perplexity API returned %d: %w", resp.StatusCode, ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Perplexity API returned %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), ErrUpstream)
	}

	var pResp perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return "", fmt.Errorf("decoding Perplexity response: %v: %w", err, ErrUpstream)
	}

	if len(pResp.Choices) > 0 && pResp.Choices[0].Message.Content != "" {
		return pResp.Choices[0].Message.Content, nil
	}
	if pResp.Text != "" {
		return pResp.Text, nil
	}
	return "", fmt.Errorf("Perplexity API returned empty content: %w", ErrUpstream)
}
