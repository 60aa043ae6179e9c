package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Capabilities reports which providers are currently wired in, for
// health and architecture listings.
type Capabilities struct {
	Embedding      bool   `json:"embedding"`
	LLM            bool   `json:"llm"`
	Rerank         bool   `json:"rerank"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	LLMModel       string `json:"llm_model,omitempty"`
}

// Providers holds references to the swappable AI providers. The embedding,
// LLM and rerank providers can be replaced at runtime without restarting
// pipelines that hold a *Providers.
// Thread-safe for concurrent access.
type Providers struct {
	mu sync.RWMutex

	embedding driven.EmbeddingProvider
	llm       driven.LLMProvider
	rerank    driven.RerankProvider
}

// NewProviders creates an empty provider registry.
func NewProviders() *Providers {
	return &Providers{}
}

// Embedding returns the current embedding provider (may be nil).
func (p *Providers) Embedding() driven.EmbeddingProvider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.embedding
}

// LLM returns the current LLM provider (may be nil).
func (p *Providers) LLM() driven.LLMProvider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.llm
}

// Rerank returns the current rerank provider (may be nil).
func (p *Providers) Rerank() driven.RerankProvider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rerank
}

// SetEmbedding replaces the embedding provider, closing the old one.
func (p *Providers) SetEmbedding(provider driven.EmbeddingProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedding != nil {
		_ = p.embedding.Close()
	}
	p.embedding = provider
}

// SetLLM replaces the LLM provider, closing the old one.
func (p *Providers) SetLLM(provider driven.LLMProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.llm != nil {
		_ = p.llm.Close()
	}
	p.llm = provider
}

// SetRerank replaces the rerank provider. Rerank providers hold no
// connections of their own, so there is nothing to close.
func (p *Providers) SetRerank(provider driven.RerankProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rerank = provider
}

// ValidateAndSetEmbedding checks connectivity before swapping in the
// embedding provider. On a failed health check the candidate is closed
// and the current provider stays in place.
func (p *Providers) ValidateAndSetEmbedding(ctx context.Context, provider driven.EmbeddingProvider) error {
	if provider == nil {
		p.SetEmbedding(nil)
		return nil
	}

	if err := provider.HealthCheck(ctx); err != nil {
		_ = provider.Close()
		return err
	}

	p.SetEmbedding(provider)
	return nil
}

// ValidateAndSetLLM checks connectivity before swapping in the LLM provider.
func (p *Providers) ValidateAndSetLLM(ctx context.Context, provider driven.LLMProvider) error {
	if provider == nil {
		p.SetLLM(nil)
		return nil
	}

	if err := provider.HealthCheck(ctx); err != nil {
		_ = provider.Close()
		return err
	}

	p.SetLLM(provider)
	return nil
}

// Capabilities returns a snapshot of the currently wired providers.
func (p *Providers) Capabilities() Capabilities {
	p.mu.RLock()
	defer p.mu.RUnlock()

	caps := Capabilities{
		Embedding: p.embedding != nil,
		LLM:       p.llm != nil,
		Rerank:    p.rerank != nil,
	}
	if p.embedding != nil {
		caps.EmbeddingModel = p.embedding.Model()
	}
	if p.llm != nil {
		caps.LLMModel = p.llm.Model()
	}
	return caps
}

// Close shuts down all providers.
func (p *Providers) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedding != nil {
		_ = p.embedding.Close()
		p.embedding = nil
	}
	if p.llm != nil {
		_ = p.llm.Close()
		p.llm = nil
	}
	p.rerank = nil

	return nil
}
