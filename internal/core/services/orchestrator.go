package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driving"
)

// DefaultArchitectureTimeout is the per-architecture task ceiling.
const DefaultArchitectureTimeout = 30 * time.Second

// Ensure QueryOrchestrator implements QueryService
var _ driving.QueryService = (*QueryOrchestrator)(nil)

// QueryOrchestrator fans one query out across the requested architectures
// concurrently and aggregates timed results in request order. Failures and
// timeouts stay inside their architecture's slot; the comparison itself
// only fails on invalid input or batch cancellation.
type QueryOrchestrator struct {
	registry *ArchitectureRegistry
	status   *StatusTracker
	cache    driven.ResultCache
	logger   *slog.Logger

	timeout  time.Duration
	cacheTTL time.Duration
}

// QueryOrchestratorConfig holds dependencies for the QueryOrchestrator.
type QueryOrchestratorConfig struct {
	Registry *ArchitectureRegistry
	Status   *StatusTracker
	Cache    driven.ResultCache // Optional: caches fully successful comparisons
	Logger   *slog.Logger

	ArchitectureTimeout time.Duration // Per-architecture ceiling (default: 30s)
	CacheTTL            time.Duration // Cached comparison lifetime (default: 5m)
}

// NewQueryOrchestrator creates a new QueryOrchestrator.
func NewQueryOrchestrator(cfg QueryOrchestratorConfig) *QueryOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.ArchitectureTimeout
	if timeout <= 0 {
		timeout = DefaultArchitectureTimeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &QueryOrchestrator{
		registry: cfg.Registry,
		status:   cfg.Status,
		cache:    cfg.Cache,
		logger:   logger,
		timeout:  timeout,
		cacheTTL: cacheTTL,
	}
}

// Query validates the request, dispatches one task per architecture and
// assembles the results in request order. Validation failures abort before
// any pipeline or provider is touched.
func (o *QueryOrchestrator) Query(ctx context.Context, req domain.QueryRequest) (*domain.ComparisonResult, error) {
	query, pipelines, params, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	if state := o.status.State(); !state.Queryable() {
		return nil, domain.ErrIndexFailed
	}

	key := cacheKey(query, req)
	if cached := o.cachedResult(ctx, key); cached != nil {
		return cached, nil
	}

	start := time.Now()
	results := make([]*domain.QueryResult, len(pipelines))

	g, gctx := errgroup.WithContext(ctx)
	for i, pipeline := range pipelines {
		i, pipeline := i, pipeline
		g.Go(func() error {
			results[i] = o.runArchitecture(gctx, pipeline, query, params, req.ShowContext)
			return nil
		})
	}
	_ = g.Wait()

	// Batch cancellation discards partial results.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comparison := &domain.ComparisonResult{
		Query:               query,
		Results:             results,
		TotalProcessingTime: time.Since(start).Seconds(),
	}

	o.storeResult(ctx, key, comparison)

	o.logger.Info("comparison completed",
		"architectures", len(results),
		"total_seconds", comparison.TotalProcessingTime,
	)

	return comparison, nil
}

// ListArchitectures returns the registered variants in registration order.
func (o *QueryOrchestrator) ListArchitectures() []domain.Architecture {
	return o.registry.List()
}

// runArchitecture executes Retrieve then GenerateAnswer under this
// architecture's time ceiling. Every outcome lands in the returned
// QueryResult; nothing escapes the task.
func (o *QueryOrchestrator) runArchitecture(
	ctx context.Context,
	pipeline RAGPipeline,
	query string,
	params domain.QueryParams,
	showContext bool,
) *domain.QueryResult {
	id := pipeline.Architecture().ID
	start := time.Now()

	tctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result := &domain.QueryResult{
		Architecture: id,
		Context:      []*domain.RankedChunk{},
	}

	retrieval, err := pipeline.Retrieve(tctx, query, params)
	var answer string
	if err == nil {
		answer, err = pipeline.GenerateAnswer(tctx, query, retrieval.Chunks)
	}

	result.ProcessingTime = time.Since(start).Seconds()

	if err != nil {
		cause := err
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// This task's ceiling fired, not the batch context.
			result.TimedOut = true
			cause = &domain.TimeoutError{Limit: o.timeout}
		}
		result.Error = (&domain.ArchitectureError{ID: id, Err: cause}).Error()

		o.logger.Warn("architecture task failed",
			"architecture", id,
			"timed_out", result.TimedOut,
			"seconds", result.ProcessingTime,
			"error", err,
		)
		return result
	}

	result.Response = answer
	result.Hypothetical = retrieval.Hypothetical
	if showContext {
		result.Context = retrieval.Chunks
	}
	return result
}

// validate checks the request and resolves pipelines and effective
// parameters. Any failure here means zero provider calls were made.
func (o *QueryOrchestrator) validate(req domain.QueryRequest) (string, []RAGPipeline, domain.QueryParams, error) {
	var none domain.QueryParams

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", nil, none, domain.NewValidationError("query", domain.ErrEmptyQuery)
	}

	if len(req.Architectures) == 0 {
		return "", nil, none, domain.NewValidationError("architectures", domain.ErrNoArchitectures)
	}

	pipelines := make([]RAGPipeline, len(req.Architectures))
	for i, id := range req.Architectures {
		pipeline, err := o.registry.Get(id)
		if err != nil {
			return "", nil, none, domain.NewValidationError("architectures", err)
		}
		pipelines[i] = pipeline
	}

	if req.K <= 0 {
		return "", nil, none, domain.NewValidationError("k", domain.ErrInvalidK)
	}

	params := domain.QueryParams{
		K:                req.K,
		RerankWeight:     req.RerankWeight,
		HydeDocLength:    req.HydeDocLength,
		UseOriginalQuery: req.UseOriginalQuery,
	}

	if params.RerankWeight == 0 {
		params.RerankWeight = domain.DefaultRerankWeight
	}
	if params.RerankWeight < 0 || params.RerankWeight > 1 {
		return "", nil, none, domain.NewValidationError("rerank_weight", fmt.Errorf("must be between 0 and 1, got %v", params.RerankWeight))
	}

	if params.HydeDocLength == "" {
		params.HydeDocLength = domain.DefaultHydeDocLength
	}
	if !params.HydeDocLength.Valid() {
		return "", nil, none, domain.NewValidationError("hyde_doc_length", fmt.Errorf("must be short, medium or long, got %q", params.HydeDocLength))
	}

	return query, pipelines, params, nil
}

// cachedResult returns a cached comparison, or nil on miss or when no
// cache is configured.
func (o *QueryOrchestrator) cachedResult(ctx context.Context, key string) *domain.ComparisonResult {
	if o.cache == nil {
		return nil
	}

	cached, err := o.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			o.logger.Warn("result cache read failed", "error", err)
		}
		return nil
	}
	return cached
}

// storeResult caches a comparison where every architecture succeeded.
// Failed slots are transient conditions, not answers worth replaying.
func (o *QueryOrchestrator) storeResult(ctx context.Context, key string, comparison *domain.ComparisonResult) {
	if o.cache == nil {
		return
	}
	for _, result := range comparison.Results {
		if result.Failed() {
			return
		}
	}

	if err := o.cache.Set(ctx, key, comparison, o.cacheTTL); err != nil {
		o.logger.Warn("result cache write failed", "error", err)
	}
}

// cacheKey digests everything that shapes a comparison's output.
func cacheKey(query string, req domain.QueryRequest) string {
	ids := make([]string, len(req.Architectures))
	for i, id := range req.Architectures {
		ids[i] = string(id)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%t\x00%v\x00%s\x00%t",
		query,
		strings.Join(ids, ","),
		req.K,
		req.ShowContext,
		req.RerankWeight,
		req.HydeDocLength,
		req.UseOriginalQuery,
	)
	return "cmp:" + hex.EncodeToString(h.Sum(nil))
}
