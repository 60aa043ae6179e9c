package domain

// ArchitectureID identifies a registered RAG pipeline variant
type ArchitectureID string

const (
	ArchitectureSimple    ArchitectureID = "simple"
	ArchitectureReranking ArchitectureID = "reranking"
	ArchitectureHyDE      ArchitectureID = "hyde"
)

// Complexity is a coarse cost tier for a pipeline variant
type Complexity string

const (
	ComplexityBaseline   Complexity = "baseline"   // single retrieval pass
	ComplexityTwoStage   Complexity = "two-stage"  // retrieval + rerank pass
	ComplexityGenerative Complexity = "generative" // LLM call inside retrieval
)

// Architecture describes a registered pipeline variant. Instances are
// created at startup and never mutated.
type Architecture struct {
	ID          ArchitectureID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Complexity  Complexity     `json:"complexity"`

	// Capability flags for callers that want to surface cost/latency hints.
	UsesRerank       bool `json:"uses_rerank"`
	UsesLLMRetrieval bool `json:"uses_llm_retrieval"`
}

// CoreArchitectures returns the fixed set of registered variants in
// registration order.
func CoreArchitectures() []Architecture {
	return []Architecture{
		{
			ID:          ArchitectureSimple,
			Name:        "Simple RAG",
			Description: "Basic RAG with retrieval and generation",
			Complexity:  ComplexityBaseline,
		},
		{
			ID:          ArchitectureReranking,
			Name:        "Reranking RAG",
			Description: "RAG with semantic reranking for improved relevance",
			Complexity:  ComplexityTwoStage,
			UsesRerank:  true,
		},
		{
			ID:               ArchitectureHyDE,
			Name:             "HyDE RAG",
			Description:      "RAG using Hypothetical Document Embeddings for enhanced retrieval",
			Complexity:       ComplexityGenerative,
			UsesLLMRetrieval: true,
		},
	}
}
