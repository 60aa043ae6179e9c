// Package qdrant implements the vector index against a Qdrant server
// over its REST API. It is the index backend for deployments where the
// corpus must survive restarts or be shared between instances.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex using Qdrant.
//
// Qdrant point ids must be UUIDs or integers, so chunk ids are mapped to
// deterministic UUIDv5 point ids and the real chunk id travels in the
// payload. Writes use wait=true so a batch is searchable the moment the
// ingest reports success.
type VectorIndex struct {
	baseURL    string
	collection string
	vectorSize int
	apiKey     string
	httpClient *http.Client
}

// Config holds Qdrant connection configuration.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (e.g., http://localhost:6333)
	BaseURL string

	// Collection is the point collection holding all chunks
	Collection string

	// VectorSize is the embedding dimensionality the collection is
	// created with
	VectorSize int

	// APIKey is sent as the api-key header when set
	APIKey string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for a local Qdrant.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Collection: "raglab_chunks",
		VectorSize: 384,
		Timeout:    30 * time.Second,
	}
}

// NewVectorIndex creates a new Qdrant-backed VectorIndex.
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.Collection == "" {
		cfg.Collection = "raglab_chunks"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &VectorIndex{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// pointPayload carries the chunk fields Qdrant stores alongside the
// vector. The embedding itself lives in the point vector, not here.
type pointPayload struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	Position   int       `json:"position"`
	Page       int       `json:"page"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	CreatedAt  time.Time `json:"created_at"`
}

type point struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

// pointID derives the stable Qdrant point id for a chunk id.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

// Upsert writes chunks as points, keyed by their derived point id, so
// re-upserting a chunk id replaces the earlier revision.
func (x *VectorIndex) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]point, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
		points[i] = point{
			ID:     pointID(chunk.ID),
			Vector: chunk.Embedding,
			Payload: pointPayload{
				ChunkID:    chunk.ID,
				DocumentID: chunk.DocumentID,
				Filename:   chunk.Filename,
				Content:    chunk.Content,
				Position:   chunk.Position,
				Page:       chunk.Page,
				StartChar:  chunk.StartChar,
				EndChar:    chunk.EndChar,
				CreatedAt:  chunk.CreatedAt,
			},
		}
	}

	body := map[string]interface{}{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", x.collection)
	if _, err := x.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      string       `json:"id"`
		Score   float64      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
}

// Search runs a similarity query and materialises chunks from payloads.
// Qdrant returns cosine similarity directly, best first.
func (x *VectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]*domain.RankedChunk, error) {
	if k <= 0 {
		return []*domain.RankedChunk{}, nil
	}

	body := map[string]interface{}{
		"vector":       embedding,
		"limit":        k,
		"with_payload": true,
	}

	path := fmt.Sprintf("/collections/%s/points/search", x.collection)
	respBody, err := x.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("qdrant search response: %w", err)
	}

	results := make([]*domain.RankedChunk, 0, len(searchResp.Result))
	for _, hit := range searchResp.Result {
		chunk := &domain.Chunk{
			ID:         hit.Payload.ChunkID,
			DocumentID: hit.Payload.DocumentID,
			Filename:   hit.Payload.Filename,
			Content:    hit.Payload.Content,
			Position:   hit.Payload.Position,
			Page:       hit.Payload.Page,
			StartChar:  hit.Payload.StartChar,
			EndChar:    hit.Payload.EndChar,
			CreatedAt:  hit.Payload.CreatedAt,
		}
		results = append(results, &domain.RankedChunk{
			Chunk: chunk,
			Score: hit.Score,
		})
	}
	return results, nil
}

// Delete removes points by chunk id. Qdrant ignores unknown point ids.
func (x *VectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]string, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	body := map[string]interface{}{"points": pointIDs}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", x.collection)
	if _, err := x.do(ctx, http.MethodPost, path, body); err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

// Clear drops and recreates the collection.
func (x *VectorIndex) Clear(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s", x.collection)

	req, err := x.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant clear failed: %w", err)
	}
	defer resp.Body.Close()

	// 404 is OK - collection never existed
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant clear failed: %s - %s", resp.Status, string(respBody))
	}

	return x.createCollection(ctx)
}

type countResponse struct {
	Result struct {
		Count int64 `json:"count"`
	} `json:"result"`
}

// Count returns the exact number of points in the collection.
func (x *VectorIndex) Count(ctx context.Context) (int, error) {
	body := map[string]interface{}{"exact": true}

	path := fmt.Sprintf("/collections/%s/points/count", x.collection)
	respBody, err := x.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}

	var countResp countResponse
	if err := json.Unmarshal(respBody, &countResp); err != nil {
		return 0, fmt.Errorf("qdrant count response: %w", err)
	}
	return int(countResp.Result.Count), nil
}

// HealthCheck probes the server root. Recent Qdrant releases dropped the
// dedicated health endpoint, the root answers on every version.
func (x *VectorIndex) HealthCheck(ctx context.Context) error {
	req, err := x.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant unhealthy: %s", resp.Status)
	}
	return nil
}

func (x *VectorIndex) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}
	return req, nil
}

// do sends a JSON request and returns the raw response body, turning any
// 4xx/5xx status into an error carrying the server's message.
func (x *VectorIndex) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := x.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return nil, err
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s - %s", resp.Status, string(respBody))
	}
	return respBody, nil
}
