package qdrant

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// EnsureCollection creates the chunk collection when it does not exist
// yet. Idempotent; called once at startup before the index takes
// traffic.
func (x *VectorIndex) EnsureCollection(ctx context.Context) error {
	exists, err := x.collectionExists(ctx)
	if err != nil {
		return fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if exists {
		return nil
	}
	return x.createCollection(ctx)
}

func (x *VectorIndex) collectionExists(ctx context.Context) (bool, error) {
	path := fmt.Sprintf("/collections/%s", x.collection)

	req, err := x.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("%s - %s", resp.Status, string(respBody))
	}
}

func (x *VectorIndex) createCollection(ctx context.Context) error {
	if x.vectorSize <= 0 {
		return fmt.Errorf("qdrant: vector size must be configured to create collection %q", x.collection)
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     x.vectorSize,
			"distance": "Cosine",
		},
	}

	path := fmt.Sprintf("/collections/%s", x.collection)
	if _, err := x.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("qdrant create collection failed: %w", err)
	}
	return nil
}
