package ai

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Ensure SemanticRerank implements RerankProvider
var _ driven.RerankProvider = (*SemanticRerank)(nil)

// SemanticRerank reorders candidates by blending their retrieval score
// with a fresh query-to-content cosine similarity. It needs no extra
// API beyond the embedding provider, which makes it the default rerank
// strategy.
type SemanticRerank struct {
	embedder driven.EmbeddingProvider
}

// NewSemanticRerank creates a rerank provider backed by the given
// embedder.
func NewSemanticRerank(embedder driven.EmbeddingProvider) (driven.RerankProvider, error) {
	if embedder == nil {
		return nil, fmt.Errorf("semantic rerank requires an embedding provider")
	}
	return &SemanticRerank{embedder: embedder}, nil
}

// Score embeds the query and every candidate's content, then orders by
// (1-weight)*original + weight*similarity, best first.
func (s *SemanticRerank) Score(ctx context.Context, query string, candidates []*domain.RankedChunk, params driven.RerankParams) ([]*domain.RankedChunk, error) {
	if len(candidates) == 0 {
		return []*domain.RankedChunk{}, nil
	}

	queryEmb, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query for rerank: %w", err)
	}

	contents := make([]string, len(candidates))
	for i, c := range candidates {
		contents[i] = c.Chunk.Content
	}
	contentEmbs, err := s.embedder.Embed(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidates for rerank: %w", err)
	}
	if len(contentEmbs) != len(candidates) {
		return nil, fmt.Errorf("embedding count mismatch: %d candidates, %d embeddings",
			len(candidates), len(contentEmbs))
	}

	weight := params.Weight
	out := make([]*domain.RankedChunk, len(candidates))
	for i, c := range candidates {
		// Cosine similarity lands in [-1,1]; shift to [0,1] so it
		// blends on the same scale as the retrieval score.
		similarity := (cosineSimilarity(queryEmb, contentEmbs[i]) + 1) / 2
		out[i] = &domain.RankedChunk{
			Chunk:         c.Chunk,
			Score:         (1-weight)*c.Score + weight*similarity,
			OriginalScore: c.Score,
			SemanticScore: similarity,
			Reranked:      true,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if params.TopK > 0 && len(out) > params.TopK {
		out = out[:params.TopK]
	}
	return out, nil
}

// Name returns the scorer name
func (s *SemanticRerank) Name() string {
	return "semantic"
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-norm vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
