package services

import (
	"context"
	"sort"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

// SelectionService is the deterministic local selection strategy: it ranks
// an already scored pool by confidence × source weight minus the unit price
// (or raw price when no unit price is known) and emits the top candidate.
type SelectionService struct {
	scorer *ScoringService
}

// NewSelectionService creates the local selector.
func NewSelectionService(scorer *ScoringService) *SelectionService {
	return &SelectionService{scorer: scorer}
}

var _ providers.SelectionStrategy = (*SelectionService)(nil)

// SelectBest chooses one candidate for the (item, chain) pair. An empty pool
// yields the substitute terminal state with the fixed low confidence.
func (s *SelectionService) SelectBest(ctx context.Context, item, chainID string, pool []entities.Candidate) (entities.LineChoice, error) {
	if len(pool) == 0 {
		return entities.LineChoice{
			Item:          item,
			Currency:      entities.DefaultCurrency,
			ConfidencePct: s.scorer.NoMatchConfidence(),
			Substitute:    true,
		}, nil
	}

	type ranked struct {
		idx    int
		key    float64
		conf   int
		priced bool
	}
	rankings := make([]ranked, len(pool))
	for i := range pool {
		conf := s.scorer.Score(&pool[i], item, chainID)
		key := float64(conf)*s.scorer.SourceWeight(pool[i].Source) - priceTerm(&pool[i])
		rankings[i] = ranked{idx: i, key: key, conf: conf, priced: pool[i].HasPrice()}
	}

	// Priced candidates always outrank unpriced ones; the key would otherwise
	// let an unpriced candidate win on its missing price term alone. Within a
	// partition the stable sort keeps original collection order on ties.
	sort.SliceStable(rankings, func(a, b int) bool {
		if rankings[a].priced != rankings[b].priced {
			return rankings[a].priced
		}
		return rankings[a].key > rankings[b].key
	})

	best := pool[rankings[0].idx]
	return lineFromCandidate(item, &best, rankings[0].conf), nil
}

// priceTerm prefers unit price over absolute price so differently sized
// packs compare fairly. Unpriced candidates carry no term; they rank in
// their own partition below every priced candidate.
func priceTerm(c *entities.Candidate) float64 {
	switch {
	case c.PricePerLiter != nil:
		return *c.PricePerLiter
	case c.PricePerKg != nil:
		return *c.PricePerKg
	case c.Price != nil:
		return *c.Price
	default:
		return 0
	}
}

func lineFromCandidate(item string, c *entities.Candidate, confidence int) entities.LineChoice {
	currency := c.Currency
	if currency == "" {
		currency = entities.DefaultCurrency
	}
	return entities.LineChoice{
		Item:          item,
		Title:         c.Title,
		Price:         c.Price,
		Currency:      currency,
		Link:          c.Link,
		Domain:        c.Domain,
		Merchant:      c.Merchant,
		Source:        c.Source,
		ConfidencePct: confidence,
		Substitute:    !c.HasPrice(),
	}
}

// ValidateChoice enforces the never-invent-data contract shared by every
// selection strategy: a priced choice must carry the exact price of some
// candidate in the supplied pool. It rejects any strategy output that does
// not trace back to a collected candidate.
func ValidateChoice(choice entities.LineChoice, pool []entities.Candidate) error {
	if choice.Price == nil {
		return nil
	}
	for i := range pool {
		if pool[i].HasPrice() && *pool[i].Price == *choice.Price {
			return nil
		}
	}
	return apperrors.NewInternalError("selected price not present in candidate pool", nil)
}
