// Package llm provides clients for OpenAI-compatible and Anthropic model
// endpoints behind a single completion interface.
package llm

import (
	"context"
)

// Client defines the single completion capability the engine needs.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete sends a system directive and user content to the model and
	// returns the reply text.
	Complete(ctx context.Context, systemMessage string, userContent string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure both concrete clients implement Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
)
