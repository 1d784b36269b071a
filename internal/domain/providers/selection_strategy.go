package providers

import (
	"context"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

// SelectionStrategy chooses the best candidate for one (item, store) pair
// from an already filtered and scored pool. Implementations are restricted
// to the supplied pool: a choice whose price or title does not match any
// candidate in it must be rejected by the caller's post-condition check,
// so no strategy can invent data.
type SelectionStrategy interface {
	// SelectBest returns the chosen line for the item at the given chain.
	// An empty pool is not an error; it yields a substitute line.
	SelectBest(ctx context.Context, item, chainID string, pool []entities.Candidate) (entities.LineChoice, error)
}
