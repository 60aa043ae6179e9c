package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Ensure JinaRerank implements RerankProvider
var _ driven.RerankProvider = (*JinaRerank)(nil)

// JinaRerank implements RerankProvider using the Jina AI rerank API.
// The cross-encoder relevance is blended with the original retrieval
// score per the request weight, so truncation happens locally after
// blending rather than via the API's top_n.
type JinaRerank struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewJinaRerank creates a new Jina rerank provider
func NewJinaRerank(apiKey, model, baseURL string) (driven.RerankProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Jina API key is required")
	}

	if model == "" {
		model = "jina-reranker-v2-base-multilingual"
	}

	if baseURL == "" {
		baseURL = defaultJinaBaseURL
	}

	return &JinaRerank{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type jinaRerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	ReturnDocuments bool     `json:"return_documents"`
}

type jinaRerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Detail string `json:"detail,omitempty"`
}

// Score sends candidate contents to the rerank API and reorders by the
// blended score, best first.
func (r *JinaRerank) Score(ctx context.Context, query string, candidates []*domain.RankedChunk, params driven.RerankParams) ([]*domain.RankedChunk, error) {
	if len(candidates) == 0 {
		return []*domain.RankedChunk{}, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Chunk.Content
	}

	reqBody := jinaRerankRequest{
		Model:           r.model,
		Query:           query,
		Documents:       documents,
		ReturnDocuments: false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call jina rerank: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Jina rerank API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var rerankResp jinaRerankResponse
	if err := json.Unmarshal(respBody, &rerankResp); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	weight := params.Weight
	out := make([]*domain.RankedChunk, 0, len(rerankResp.Results))
	for _, result := range rerankResp.Results {
		if result.Index < 0 || result.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank result index %d out of range", result.Index)
		}
		candidate := candidates[result.Index]
		out = append(out, &domain.RankedChunk{
			Chunk:         candidate.Chunk,
			Score:         (1-weight)*candidate.Score + weight*result.RelevanceScore,
			OriginalScore: candidate.Score,
			SemanticScore: result.RelevanceScore,
			Reranked:      true,
		})
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
func (r *JinaRerank) Name() string {
	return r.model
}
