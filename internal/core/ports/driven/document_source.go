package driven

import (
	"context"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

// DocumentSource produces the finite document batch for one ingestion
// call. Sources read everything up front so ingestion never holds open
// handles into caller-owned storage.
type DocumentSource interface {
	// Documents returns the batch in a stable order.
	Documents(ctx context.Context) ([]domain.RawDocument, error)
}
