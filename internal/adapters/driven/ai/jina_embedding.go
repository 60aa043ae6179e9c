package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Ensure JinaEmbedding implements EmbeddingProvider
var _ driven.EmbeddingProvider = (*JinaEmbedding)(nil)

const defaultJinaBaseURL = "https://api.jina.ai/v1"

// Task identifiers for Jina's asymmetric retrieval embeddings. Passages
// and queries are embedded with different task heads; mixing them up
// costs retrieval quality silently, so the adapter pins the task per
// method instead of exposing it.
const (
	jinaTaskPassage = "retrieval.passage"
	jinaTaskQuery   = "retrieval.query"
)

// Model dimensions for Jina embedding models
var jinaModelDimensions = map[string]int{
	"jina-embeddings-v3":         1024,
	"jina-embeddings-v2-base-en": 768,
}

// JinaEmbedding implements EmbeddingProvider using the Jina AI
// embedding API
type JinaEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewJinaEmbedding creates a new Jina embedding provider
func NewJinaEmbedding(apiKey, model, baseURL string) (driven.EmbeddingProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Jina API key is required")
	}

	if model == "" {
		model = "jina-embeddings-v3"
	}

	if baseURL == "" {
		baseURL = defaultJinaBaseURL
	}

	dimensions, ok := jinaModelDimensions[model]
	if !ok {
		dimensions = 1024
	}

	return &JinaEmbedding{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// jinaEmbeddingRequest is the request body for the Jina embedding API.
// The response reuses the OpenAI-compatible embeddingResponse shape.
type jinaEmbeddingRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task,omitempty"`
	Input []string `json:"input"`
}

// Embed generates passage embeddings for multiple texts
func (e *JinaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, jinaTaskPassage)
}

// EmbedQuery generates a query-side embedding
func (e *JinaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.embed(ctx, []string{query}, jinaTaskQuery)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("jina returned no embedding for query")
	}
	return embeddings[0], nil
}

func (e *JinaEmbedding) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	reqBody := jinaEmbeddingRequest{
		Model: e.model,
		Task:  task,
		Input: texts,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call jina: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jina response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Jina API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("decode jina response: %w", err)
	}

	return orderEmbeddings(embResp.Data, len(texts))
}

// Dimensions returns the embedding dimension size
func (e *JinaEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *JinaEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding provider is available
func (e *JinaEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding provider
func (e *JinaEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
