package driven

import (
	"context"
)

// LLMProvider generates natural-language text for answer synthesis and
// HyDE's hypothetical documents
type LLMProvider interface {
	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the LLM provider is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the provider
	Close() error
}
