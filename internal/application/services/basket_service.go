package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

// BasketService runs the full aggregation pipeline: variant expansion,
// candidate collection under a bounded worker pool, normalization,
// enrichment, filtering, scoring, selection, and basket assembly.
type BasketService struct {
	variants   *VariantService
	runner     *CollectorRunner
	normalizer *NormalizerService
	enricher   *EnrichmentService
	filter     *PoolFilterService
	scorer     *ScoringService
	selector   providers.SelectionStrategy
	fallback   *SelectionService

	concurrency int
}

// NewBasketService wires the pipeline. selector may be an LLM-backed
// strategy; fallback is the deterministic local selector used when the
// primary strategy fails or violates the never-invent contract.
func NewBasketService(
	variants *VariantService,
	runner *CollectorRunner,
	normalizer *NormalizerService,
	enricher *EnrichmentService,
	filter *PoolFilterService,
	scorer *ScoringService,
	selector providers.SelectionStrategy,
	fallback *SelectionService,
	concurrency int,
) *BasketService {
	if concurrency <= 0 {
		concurrency = 6
	}
	if selector == nil {
		selector = fallback
	}
	return &BasketService{
		variants:    variants,
		runner:      runner,
		normalizer:  normalizer,
		enricher:    enricher,
		filter:      filter,
		scorer:      scorer,
		selector:    selector,
		fallback:    fallback,
		concurrency: concurrency,
	}
}

// Compare prices the shopping list at every store and returns the ranked
// baskets. The only failure mode is request validation; provider problems
// degrade into substitute lines, never into an error.
func (s *BasketService) Compare(ctx context.Context, items []string, stores []entities.Store) ([]entities.StoreBasket, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("at least one item is required")
	}
	if len(stores) == 0 {
		return nil, apperrors.NewValidationError("at least one store is required")
	}

	// lines[storeIdx][itemIdx]; each (store, item) task owns its own cell,
	// so no locking is needed until the single-threaded assembly below.
	lines := make([][]entities.LineChoice, len(stores))
	for i := range lines {
		lines[i] = make([]entities.LineChoice, len(items))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for si := range stores {
		for ii := range items {
			si, ii := si, ii
			g.Go(func() error {
				lines[si][ii] = s.resolveLine(gctx, items[ii], stores[si].ChainID)
				return nil
			})
		}
	}
	// Tasks never return errors; Wait only orders the memory.
	_ = g.Wait()

	baskets := make([]entities.StoreBasket, len(stores))
	for i, store := range stores {
		baskets[i] = assembleBasket(store, lines[i])
	}
	rankBaskets(baskets)
	return baskets, nil
}

// resolveLine runs the per-(item, store) pipeline. A cancelled context or an
// empty pool degrades to the substitute terminal state.
func (s *BasketService) resolveLine(ctx context.Context, item, chainID string) entities.LineChoice {
	if ctx.Err() != nil {
		return s.substituteLine(ctx, item, chainID)
	}

	variants := s.variants.Expand(item)
	pool := s.runner.CollectAll(ctx, variants, chainID)

	for i := range pool {
		s.normalizer.Normalize(&pool[i], item)
	}

	pool = s.filter.Dedupe(pool)
	s.enricher.Enrich(ctx, pool, item)
	// Enrichment may have filled prices; normalize again so unit prices
	// follow, then run the statistical steps on the final pool.
	for i := range pool {
		s.normalizer.Normalize(&pool[i], item)
	}
	pool = s.filter.RemoveOutliers(pool)
	s.filter.TagConsensus(pool)

	choice, err := s.selector.SelectBest(ctx, item, chainID, pool)
	if err == nil {
		err = ValidateChoice(choice, pool)
	}
	if err != nil {
		log.Warn().Err(err).Str("item", item).Str("chain", chainID).Msg("selection strategy failed, using local selector")
		choice, _ = s.fallback.SelectBest(ctx, item, chainID, pool)
	}
	return choice
}

func (s *BasketService) substituteLine(ctx context.Context, item, chainID string) entities.LineChoice {
	choice, _ := s.fallback.SelectBest(ctx, item, chainID, nil)
	return choice
}

// assembleBasket sums priced lines, computes coverage and mean confidence.
func assembleBasket(store entities.Store, breakdown []entities.LineChoice) entities.StoreBasket {
	var total float64
	priced := 0
	confidenceSum := 0
	for _, line := range breakdown {
		if line.Price != nil {
			total += *line.Price
			priced++
		}
		confidenceSum += line.ConfidencePct
	}

	basket := entities.StoreBasket{
		ChainID:     store.ChainID,
		DisplayName: store.DisplayName,
		Address:     store.Address,
		Location:    store.Location,
		Breakdown:   breakdown,
		Currency:    entities.DefaultCurrency,
	}
	if priced > 0 {
		basket.Total = &total
	}
	if len(breakdown) > 0 {
		basket.Coverage = float64(priced) / float64(len(breakdown))
		basket.MatchOverall = float64(confidenceSum) / float64(len(breakdown)) / 100
	}
	return basket
}

// rankBaskets orders stores by total ascending with unpriced baskets last,
// then coverage descending, then overall confidence descending. The sort is
// stable so equal baskets keep store-discovery order.
func rankBaskets(baskets []entities.StoreBasket) {
	sort.SliceStable(baskets, func(a, b int) bool {
		ta, tb := baskets[a].Total, baskets[b].Total
		switch {
		case ta == nil && tb == nil:
			// fall through to coverage
		case ta == nil:
			return false
		case tb == nil:
			return true
		case *ta != *tb:
			return *ta < *tb
		}
		if baskets[a].Coverage != baskets[b].Coverage {
			return baskets[a].Coverage > baskets[b].Coverage
		}
		return baskets[a].MatchOverall > baskets[b].MatchOverall
	})
}
