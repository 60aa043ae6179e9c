package driving

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// QueryService runs comparison queries across registered architectures
type QueryService interface {
	// Query validates the request, fans it out across the requested
	// architectures concurrently and aggregates the results in request
	// order. Fails with *domain.ValidationError before any dispatch on
	// bad input; per-architecture failures are contained in the result.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.ComparisonResult, error)

	// ListArchitectures returns the registered variants in registration
	// order
	ListArchitectures() []domain.Architecture
}
