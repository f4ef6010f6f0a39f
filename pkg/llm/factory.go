package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewClient creates a Client for the named provider.
// Supported providers: "openai" (any OpenAI-compatible endpoint),
// "anthropic".
func NewClient(provider string, cfg *Config, logger *zap.Logger) (Client, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
