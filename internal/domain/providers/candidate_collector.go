package providers

import (
	"context"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

// CandidateCollector gathers raw price candidates for one search variant.
// Implementations must tag every candidate with their source class, must
// never fabricate a price, and must return an empty slice (not an error)
// on transient provider failure so that one provider never aborts
// aggregation for the others.
type CandidateCollector interface {
	// Name identifies the provider in logs and cache keys.
	Name() string

	// Collect returns candidates for a search variant. chainHint, when
	// non-empty, scopes the search toward a specific supermarket chain.
	Collect(ctx context.Context, variant, chainHint string) ([]entities.Candidate, error)
}
