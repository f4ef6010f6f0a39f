package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient provides access to OpenAI-compatible model endpoints.
type OpenAIClient struct {
	client      *openai.Client
	endpoint    string
	model       string
	temperature float64
	logger      *zap.Logger
}

// Config holds configuration for creating a client.
type Config struct {
	Endpoint    string  // Base URL, e.g., "https://api.openai.com/v1"
	Model       string  // Model name, e.g., "gpt-4o"
	APIKey      string  // Optional for local endpoints
	Temperature float64 // Sampling temperature
	MaxTokens   int     // Response token cap (Anthropic requires one)
}

// NewOpenAIClient creates a client for any OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.Named("llm"),
	}, nil
}

// Complete sends a system directive and user content as a two-message chat
// completion and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, systemMessage string, userContent string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
		{Role: openai.ChatMessageRoleUser, Content: userContent},
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userContent)),
		zap.Float64("temperature", c.temperature))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(c.temperature),
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeUnknown, "no choices in response", false, nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// GetModel returns the configured model name.
func (c *OpenAIClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *OpenAIClient) GetEndpoint() string {
	return c.endpoint
}
