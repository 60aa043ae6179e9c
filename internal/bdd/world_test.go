package bdd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/raglab-core/internal/core/services"
	"github.com/custodia-labs/raglab-core/internal/runtime"
)

// engineWorld holds one scenario's engine instance and the outcome of the
// most recent ingest and compare calls.
type engineWorld struct {
	index  *mocks.MockVectorIndex
	store  *mocks.MockDocumentStore
	rerank *mocks.MockRerankProvider

	indexer      *services.Indexer
	orchestrator *services.QueryOrchestrator

	ingestErr  error
	comparison *domain.ComparisonResult
	compareErr error
}

// reset rebuilds the whole engine on fresh in-memory backends. Called
// before every scenario.
func (w *engineWorld) reset() error {
	w.index = mocks.NewMockVectorIndex()
	w.store = mocks.NewMockDocumentStore()
	w.rerank = mocks.NewMockRerankProvider()
	w.ingestErr = nil
	w.comparison = nil
	w.compareErr = nil

	providers := runtime.NewProviders()
	providers.SetEmbedding(mocks.NewMockEmbeddingProvider())
	providers.SetLLM(mocks.NewMockLLMProvider())
	providers.SetRerank(w.rerank)

	status := services.NewStatusTracker()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w.indexer = services.NewIndexer(services.IndexerConfig{
		Index:     w.index,
		Documents: w.store,
		Lock:      mocks.NewMockIngestLock(),
		Providers: providers,
		Status:    status,
		Logger:    logger,
	})

	registry := services.NewArchitectureRegistry()
	pipelines := []services.RAGPipeline{
		services.NewSimplePipeline(w.index, providers),
		services.NewRerankPipeline(w.index, providers, 0),
		services.NewHydePipeline(w.index, providers),
	}
	for _, pipeline := range pipelines {
		if err := registry.Register(pipeline); err != nil {
			return err
		}
	}

	w.orchestrator = services.NewQueryOrchestrator(services.QueryOrchestratorConfig{
		Registry: registry,
		Status:   status,
		Logger:   logger,
	})

	return nil
}

// Givens

func (w *engineWorld) anEmptyIndex(ctx context.Context) error {
	if got := w.indexer.Status(ctx).Status; got != domain.IndexStatusEmpty {
		return fmt.Errorf("expected an empty index, got %q", got)
	}
	return nil
}

func (w *engineWorld) anIngestedCorpus(ctx context.Context, table *godog.Table) error {
	docs, err := documentsFromTable(table)
	if err != nil {
		return err
	}
	state, err := w.indexer.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("corpus ingestion failed: %w", err)
	}
	if state.Status != domain.IndexStatusReady {
		return fmt.Errorf("expected a ready index after the corpus, got %q", state.Status)
	}
	return nil
}

func (w *engineWorld) vectorIndexRejectsNextWrite() error {
	w.index.SetFailUpsert(true)
	return nil
}

func (w *engineWorld) vectorIndexRejectsNextDelete() error {
	w.index.SetFailDelete(true)
	return nil
}

func (w *engineWorld) rerankFailsNextCall() error {
	w.rerank.SetFailNext(true)
	return nil
}

func (w *engineWorld) indexHasFailedBeyondRollback(ctx context.Context) error {
	w.index.SetFailUpsert(true)
	w.index.SetFailDelete(true)

	_, err := w.indexer.Ingest(ctx, []domain.RawDocument{
		{Filename: "doomed.txt", Content: []byte("This batch will not survive.")},
	})
	if err == nil {
		return errors.New("expected the doomed batch to fail")
	}
	if got := w.indexer.Status(ctx).Status; got != domain.IndexStatusFailed {
		return fmt.Errorf("expected a failed index, got %q", got)
	}
	return nil
}

// Actions

func (w *engineWorld) iIngestDocuments(ctx context.Context, table *godog.Table) error {
	docs, err := documentsFromTable(table)
	if err != nil {
		return err
	}
	_, w.ingestErr = w.indexer.Ingest(ctx, docs)
	return nil
}

func (w *engineWorld) iIngestEmptyBatch(ctx context.Context) error {
	_, w.ingestErr = w.indexer.Ingest(ctx, nil)
	return nil
}

func (w *engineWorld) iClearIndex(ctx context.Context) error {
	return w.indexer.Clear(ctx)
}

func (w *engineWorld) iCompareQuery(ctx context.Context, query, archList string) error {
	req := domain.QueryRequest{
		Query:         query,
		Architectures: architecturesFrom(archList),
		K:             domain.DefaultK,
	}
	w.comparison, w.compareErr = w.orchestrator.Query(ctx, req)
	return nil
}

// Assertions

func (w *engineWorld) ingestionSucceeds() error {
	if w.ingestErr != nil {
		return fmt.Errorf("expected ingestion to succeed, got %v", w.ingestErr)
	}
	return nil
}

func (w *engineWorld) ingestionFails() error {
	if w.ingestErr == nil {
		return errors.New("expected ingestion to fail")
	}
	return nil
}

func (w *engineWorld) indexStatusIs(ctx context.Context, want string) error {
	if got := w.indexer.Status(ctx).Status; got != domain.IndexStatus(want) {
		return fmt.Errorf("expected index status %q, got %q", want, got)
	}
	return nil
}

func (w *engineWorld) indexHolds(ctx context.Context, count int) error {
	if got := w.indexer.Status(ctx).DocumentCount; got != count {
		return fmt.Errorf("expected %d documents, got %d", count, got)
	}
	return nil
}

func (w *engineWorld) comparisonHasResults(count int) error {
	if w.compareErr != nil {
		return fmt.Errorf("expected a comparison, got error: %v", w.compareErr)
	}
	if got := len(w.comparison.Results); got != count {
		return fmt.Errorf("expected %d results, got %d", count, got)
	}
	return nil
}

func (w *engineWorld) comparisonRejected() error {
	if w.compareErr == nil {
		return errors.New("expected the comparison to be rejected")
	}
	return nil
}

func (w *engineWorld) resultsOrdered(archList string) error {
	want := architecturesFrom(archList)
	if len(w.comparison.Results) != len(want) {
		return fmt.Errorf("expected %d results, got %d", len(want), len(w.comparison.Results))
	}
	for i, result := range w.comparison.Results {
		if result.Architecture != want[i] {
			return fmt.Errorf("result %d: expected architecture %q, got %q", i, want[i], result.Architecture)
		}
	}
	return nil
}

func (w *engineWorld) everyResultCarriesAnswer() error {
	for _, result := range w.comparison.Results {
		if result.Failed() {
			return fmt.Errorf("architecture %q failed: %s", result.Architecture, result.Error)
		}
		if result.Response == "" {
			return fmt.Errorf("architecture %q produced no answer", result.Architecture)
		}
	}
	return nil
}

func (w *engineWorld) resultCarriesAnswer(arch string) error {
	result, err := w.resultFor(arch)
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("architecture %q failed: %s", arch, result.Error)
	}
	if result.Response == "" {
		return fmt.Errorf("architecture %q produced no answer", arch)
	}
	return nil
}

func (w *engineWorld) resultReportsError(arch string) error {
	result, err := w.resultFor(arch)
	if err != nil {
		return err
	}
	if !result.Failed() {
		return fmt.Errorf("expected architecture %q to fail, got answer %q", arch, result.Response)
	}
	return nil
}

func (w *engineWorld) resultFor(arch string) (*domain.QueryResult, error) {
	if w.comparison == nil {
		return nil, errors.New("no comparison ran yet")
	}
	for _, result := range w.comparison.Results {
		if result.Architecture == domain.ArchitectureID(arch) {
			return result, nil
		}
	}
	return nil, fmt.Errorf("no result for architecture %q", arch)
}

// documentsFromTable reads a | filename | content | data table.
func documentsFromTable(table *godog.Table) ([]domain.RawDocument, error) {
	if len(table.Rows) < 2 {
		return nil, errors.New("table needs a header row and at least one document")
	}

	columns := make(map[string]int, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		columns[cell.Value] = i
	}
	fileCol, ok := columns["filename"]
	if !ok {
		return nil, errors.New(`table needs a "filename" column`)
	}
	contentCol, ok := columns["content"]
	if !ok {
		return nil, errors.New(`table needs a "content" column`)
	}

	docs := make([]domain.RawDocument, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		docs = append(docs, domain.RawDocument{
			Filename: row.Cells[fileCol].Value,
			Content:  []byte(row.Cells[contentCol].Value),
		})
	}
	return docs, nil
}

func architecturesFrom(list string) []domain.ArchitectureID {
	parts := strings.Split(list, ",")
	ids := make([]domain.ArchitectureID, 0, len(parts))
	for _, part := range parts {
		ids = append(ids, domain.ArchitectureID(strings.TrimSpace(part)))
	}
	return ids
}
