package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAIProvider is a mock implementation of port.AIProvider.
type MockAIProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockAIProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockAIProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockAIProvider) CompleteWithImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	args := m.Called(ctx, image, mimeType, prompt)
	return args.String(0), args.Error(1)
}
