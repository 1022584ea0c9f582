package port

import "context"

// AIProvider is an interchangeable text/vision completion backend.
// Calls are single-shot; implementations never retry.
type AIProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	CompleteWithImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// ProviderSelector resolves a model choice to a configured provider.
type ProviderSelector interface {
	Select(model string) (AIProvider, error)
}
