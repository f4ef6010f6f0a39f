package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function field to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, systemMessage string, userContent string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	// Call tracking for verification
	CompleteCalls int
	LastSystem    string
	LastUser      string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, systemMessage string, userContent string) (string, error) {
	m.CompleteCalls++
	m.LastSystem = systemMessage
	m.LastUser = userContent
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemMessage, userContent)
	}
	return "", nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements Client.
func (m *MockClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.CompleteCalls = 0
	m.LastSystem = ""
	m.LastUser = ""
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
