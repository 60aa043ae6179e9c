// Package ai implements the embedding, LLM and rerank providers behind
// the AI ports, plus the factory that selects one per concern from
// configuration. The "mock" provider of each concern is deterministic
// and in-process, for development without API keys.
package ai

import (
	"fmt"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven/mocks"
)

// Ensure Factory implements ProviderFactory
var _ driven.ProviderFactory = (*Factory)(nil)

// Factory creates AI providers based on configuration
type Factory struct{}

// NewFactory creates a new provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingProvider creates an embedding provider from config
func (f *Factory) CreateEmbeddingProvider(cfg driven.EmbeddingConfig) (driven.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "jina":
		return NewJinaEmbedding(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAIEmbedding(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "mock":
		return mocks.NewMockEmbeddingProvider(), nil
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidProvider, cfg.Provider)
	}
}

// CreateLLMProvider creates an LLM provider from config
func (f *Factory) CreateLLMProvider(cfg driven.LLMConfig) (driven.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiLLM(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Temperature)
	case "mock":
		return mocks.NewMockLLMProvider(), nil
	default:
		return nil, fmt.Errorf("%w: llm provider %q", domain.ErrInvalidProvider, cfg.Provider)
	}
}

// CreateRerankProvider creates a rerank provider from config. The
// embedder feeds the embedding-based "semantic" strategy and is ignored
// by the rest.
func (f *Factory) CreateRerankProvider(cfg driven.RerankConfig, embedder driven.EmbeddingProvider) (driven.RerankProvider, error) {
	switch cfg.Provider {
	case "semantic":
		return NewSemanticRerank(embedder)
	case "jina":
		return NewJinaRerank(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "mock":
		return mocks.NewMockRerankProvider(), nil
	default:
		return nil, fmt.Errorf("%w: rerank provider %q", domain.ErrInvalidProvider, cfg.Provider)
	}
}
