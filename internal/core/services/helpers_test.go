package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// testProviders bundles a provider registry with its mock backends so
// tests can both drive the pipelines and inspect provider traffic.
type testProviders struct {
	providers *runtime.Providers
	embedding *mocks.MockEmbeddingProvider
	llm       *mocks.MockLLMProvider
	rerank    *mocks.MockRerankProvider
}

func newTestProviders() *testProviders {
	tp := &testProviders{
		providers: runtime.NewProviders(),
		embedding: mocks.NewMockEmbeddingProvider(),
		llm:       mocks.NewMockLLMProvider(),
		rerank:    mocks.NewMockRerankProvider(),
	}
	tp.providers.SetEmbedding(tp.embedding)
	tp.providers.SetLLM(tp.llm)
	tp.providers.SetRerank(tp.rerank)
	return tp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedChunks embeds and upserts one chunk per content string. A throwaway
// embedder generates the vectors so the system under test keeps a clean
// call count; the mock embeddings are deterministic per text, so query-side
// similarity still works.
func seedChunks(t *testing.T, index *mocks.MockVectorIndex, contents ...string) {
	t.Helper()

	embedder := mocks.NewMockEmbeddingProvider()
	vectors, err := embedder.Embed(context.Background(), contents)
	if err != nil {
		t.Fatalf("embedding seed content: %v", err)
	}

	chunks := make([]*domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = &domain.Chunk{
			ID:         fmt.Sprintf("seed-doc-chunk-%d", i),
			DocumentID: "seed-doc",
			Filename:   "seed.txt",
			Content:    content,
			Embedding:  vectors[i],
			Position:   i,
			Page:       1,
			CreatedAt:  time.Now(),
		}
	}
	if err := index.Upsert(context.Background(), chunks); err != nil {
		t.Fatalf("seeding index: %v", err)
	}
}

// testParams returns query parameters as the orchestrator would resolve
// them, with defaults filled in.
func testParams(k int) domain.QueryParams {
	return domain.QueryParams{
		K:             k,
		RerankWeight:  domain.DefaultRerankWeight,
		HydeDocLength: domain.DefaultHydeDocLength,
	}
}
