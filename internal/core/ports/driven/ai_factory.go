package driven

// EmbeddingConfig selects and configures an embedding provider
type EmbeddingConfig struct {
	Provider string // "jina", "openai", "mock"
	Model    string
	APIKey   string
	BaseURL  string // override for self-hosted gateways, empty for default
}

// LLMConfig selects and configures an LLM provider
type LLMConfig struct {
	Provider    string // "gemini", "mock"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

// RerankConfig selects and configures a rerank provider
type RerankConfig struct {
	Provider string // "semantic", "jina", "mock"
	Model    string
	APIKey   string
	BaseURL  string
}

// ProviderFactory creates AI providers based on configuration
type ProviderFactory interface {
	// CreateEmbeddingProvider creates an embedding provider from config
	CreateEmbeddingProvider(cfg EmbeddingConfig) (EmbeddingProvider, error)

	// CreateLLMProvider creates an LLM provider from config
	CreateLLMProvider(cfg LLMConfig) (LLMProvider, error)

	// CreateRerankProvider creates a rerank provider from config. The
	// embedder is used by embedding-based strategies ("semantic") and
	// ignored by the rest.
	CreateRerankProvider(cfg RerankConfig, embedder EmbeddingProvider) (RerankProvider, error)
}
