package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		logger:      logger.Named("llm"),
	}, nil
}

// Complete sends a system directive and user content to the Messages API
// and returns the reply text.
func (c *AnthropicClient) Complete(ctx context.Context, systemMessage string, userContent string) (string, error) {
	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userContent)))

	start := time.Now()

	temp := float32(c.temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   c.maxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(userContent),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", NewError(ErrorTypeUnknown, "no text content in response", false, nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the Anthropic API endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return "https://api.anthropic.com"
}
