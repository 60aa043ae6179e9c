package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// RAGPipeline is the fixed capability contract every architecture variant
// implements. Retrieve is deterministic for a fixed index snapshot and
// embedding model, except where a variant documents otherwise (HyDE's
// hypothetical generation). Both operations must tolerate an empty index:
// Retrieve returns zero chunks and GenerateAnswer produces a degenerate
// no-grounding answer instead of failing.
type RAGPipeline interface {
	// Architecture returns the immutable descriptor for this variant.
	Architecture() domain.Architecture

	// Retrieve returns at most params.K chunks ordered by relevance.
	Retrieve(ctx context.Context, query string, params domain.QueryParams) (*domain.Retrieval, error)

	// GenerateAnswer synthesizes an answer grounded in the given chunks.
	GenerateAnswer(ctx context.Context, query string, chunks []*domain.RankedChunk) (string, error)
}

// answerPromptTemplate grounds the LLM in retrieved context. Shared by
// all variants so comparisons only measure retrieval differences.
const answerPromptTemplate = `You are an AI assistant. Use the following context to answer the user's question accurately and concisely.

Context:
%s

Question:
%s

Answer based on the provided context. If the context doesn't contain enough information to fully answer the question, please indicate what information is missing or limited.`

// NoGroundingAnswer is returned without consulting the LLM when retrieval
// produced no context at all.
const NoGroundingAnswer = "I couldn't find relevant information to answer your question."

// basePipeline carries the collaborators and generation stage shared by
// every variant.
type basePipeline struct {
	providers *runtime.Providers
}

// GenerateAnswer builds the grounding prompt from the retrieved chunks and
// asks the LLM for an answer. Zero chunks short-circuits to a canned
// answer with no provider call.
func (b *basePipeline) GenerateAnswer(ctx context.Context, query string, chunks []*domain.RankedChunk) (string, error) {
	if len(chunks) == 0 {
		return NoGroundingAnswer, nil
	}

	llm := b.providers.LLM()
	if llm == nil {
		return "", &domain.ProviderError{Provider: "llm", Op: "generate", Err: domain.ErrServiceUnavailable}
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Chunk.Content
	}
	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(contents, "\n\n"), query)

	answer, err := llm.Generate(ctx, prompt)
	if err != nil {
		return "", &domain.ProviderError{Provider: "llm", Op: "generate", Err: err}
	}

	return strings.TrimSpace(answer), nil
}

// embedQuery resolves the current embedding provider and embeds the given
// text, wrapping failures as provider errors.
func (b *basePipeline) embedQuery(ctx context.Context, text string) ([]float32, error) {
	embedder := b.providers.Embedding()
	if embedder == nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed_query", Err: domain.ErrServiceUnavailable}
	}

	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed_query", Err: err}
	}
	return vector, nil
}
