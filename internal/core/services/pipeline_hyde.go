package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// hydePromptTemplate asks the LLM for a document that would answer the
// question, so retrieval can match on answer-shaped text instead of the
// question itself.
const hydePromptTemplate = `You are an expert assistant. Given the following question, write a hypothetical document that would perfectly answer this question.

%s that directly addresses the question as if you were writing content that would be found in a knowledge base or document collection.

Question: %s

Hypothetical Document:`

// hydeLengthInstructions maps the requested document length to the prompt
// fragment steering the LLM.
var hydeLengthInstructions = map[domain.HydeDocLength]string{
	domain.HydeDocShort:  "Write a brief, concise answer (2-3 sentences)",
	domain.HydeDocMedium: "Write a comprehensive answer (1-2 paragraphs)",
	domain.HydeDocLong:   "Write a detailed, thorough answer (3-4 paragraphs)",
}

// Ensure HydePipeline implements RAGPipeline
var _ RAGPipeline = (*HydePipeline)(nil)

// HydePipeline is the generative variant: the LLM writes a hypothetical
// answer document, and retrieval embeds that document instead of the
// literal query. Non-deterministic by construction, since the hypothetical
// text varies between LLM calls.
type HydePipeline struct {
	basePipeline
	descriptor domain.Architecture
	index      driven.VectorIndex
}

// NewHydePipeline creates the hypothetical-document retrieval pipeline.
func NewHydePipeline(index driven.VectorIndex, providers *runtime.Providers) *HydePipeline {
	return &HydePipeline{
		basePipeline: basePipeline{providers: providers},
		descriptor:   descriptorFor(domain.ArchitectureHyDE),
		index:        index,
	}
}

// Architecture returns the variant descriptor.
func (p *HydePipeline) Architecture() domain.Architecture {
	return p.descriptor
}

// Retrieve generates a hypothetical document, embeds it (optionally
// prefixed with the original query) and searches with that embedding.
// The generated document rides along in the retrieval for callers that
// want to display it.
func (p *HydePipeline) Retrieve(ctx context.Context, query string, params domain.QueryParams) (*domain.Retrieval, error) {
	hypothetical, err := p.generateHypothetical(ctx, query, params.HydeDocLength)
	if err != nil {
		return nil, err
	}

	searchText := hypothetical
	if params.UseOriginalQuery {
		searchText = fmt.Sprintf("%s\n\n%s", query, hypothetical)
	}

	vector, err := p.embedQuery(ctx, searchText)
	if err != nil {
		return nil, err
	}

	chunks, err := p.index.Search(ctx, vector, params.K)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "vector-index", Op: "search", Err: err}
	}

	return &domain.Retrieval{Chunks: chunks, Hypothetical: hypothetical}, nil
}

// generateHypothetical asks the LLM for an answer-shaped document of the
// requested length.
func (p *HydePipeline) generateHypothetical(ctx context.Context, query string, length domain.HydeDocLength) (string, error) {
	llm := p.providers.LLM()
	if llm == nil {
		return "", &domain.ProviderError{Provider: "llm", Op: "generate_hypothetical", Err: domain.ErrServiceUnavailable}
	}

	instruction, ok := hydeLengthInstructions[length]
	if !ok {
		instruction = hydeLengthInstructions[domain.DefaultHydeDocLength]
	}

	prompt := fmt.Sprintf(hydePromptTemplate, instruction, query)
	doc, err := llm.Generate(ctx, prompt)
	if err != nil {
		return "", &domain.ProviderError{Provider: "llm", Op: "generate_hypothetical", Err: err}
	}

	return strings.TrimSpace(doc), nil
}
