// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research turns deep research reports into structured buyer
// research. The parser half (Compose and friends) is pure and never fails;
// the service half calls an LLM backend, caches its answers, and records runs.
package research

import (
	"context"
	"errors"
)

// Errors returned by backends and the service. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	ErrNotConfigured  = errors.New("research service not configured")
	ErrUnauthorized   = errors.New("research service rejected credentials")
	ErrRateLimited    = errors.New("research service rate limited")
	ErrUpstream       = errors.New("research service error")
	ErrInvalidRequest = errors.New("invalid research request")
)

// Backend runs one deep research query and returns the model's markdown
// answer. Implementations must honor ctx cancellation.
type Backend interface {
	Name() string

	// Configured reports whether the backend has the credentials it needs.
	Configured() bool

	Research(ctx context.Context, prompt string, maxTokens int) (string, error)
}
