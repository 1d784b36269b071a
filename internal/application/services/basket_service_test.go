package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

// chainPriceCollector returns one priced candidate per known chain.
type chainPriceCollector struct {
	prices map[string]float64
}

func (c *chainPriceCollector) Name() string { return "chain-prices" }

func (c *chainPriceCollector) Collect(_ context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	price, ok := c.prices[chainHint]
	if !ok {
		return nil, nil
	}
	p := price
	return []entities.Candidate{{
		Query:    variant,
		Title:    variant,
		Price:    &p,
		Currency: "ILS",
		Merchant: chainHint,
		Domain:   "shop.example.co.il",
		Source:   entities.SourceStructuredShopping,
	}}, nil
}

// itemPriceCollector prices only queries mentioning the token, so some
// items in a list stay unpriced.
type itemPriceCollector struct {
	token string
	price float64
}

func (c *itemPriceCollector) Name() string { return "item-prices" }

func (c *itemPriceCollector) Collect(_ context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	if !strings.Contains(variant, c.token) {
		return nil, nil
	}
	p := c.price
	return []entities.Candidate{{
		Query:    variant,
		Title:    variant,
		Price:    &p,
		Currency: "ILS",
		Merchant: chainHint,
		Domain:   "shop.example.co.il",
		Source:   entities.SourceStructuredShopping,
	}}, nil
}

type nopFetcher struct{}

func (nopFetcher) FetchProduct(_ context.Context, _ string) (*providers.StructuredProduct, error) {
	return nil, nil
}

func newTestBasketService(collector providers.CandidateCollector) *BasketService {
	scorer := NewScoringService(testScoringConfig(), 1.15)
	local := NewSelectionService(scorer)
	return NewBasketService(
		NewVariantService(),
		NewCollectorRunner([]providers.CandidateCollector{collector}, nil, 60),
		NewNormalizerService(),
		NewEnrichmentService(nopFetcher{}, 2),
		NewPoolFilterService(24, 6, 5),
		scorer,
		local,
		local,
		4,
	)
}

func TestCompare_RanksCheapestFirst(t *testing.T) {
	svc := newTestBasketService(&chainPriceCollector{prices: map[string]float64{
		"Rami Levy": 5.0,
		"Shufersal": 8.0,
	}})

	stores := []entities.Store{
		{ChainID: "Shufersal", DisplayName: "שופרסל דיל"},
		{ChainID: "Rami Levy", DisplayName: "רמי לוי"},
		{ChainID: "Victory", DisplayName: "ויקטורי"},
	}

	baskets, err := svc.Compare(context.Background(), []string{"חלב"}, stores)

	require.NoError(t, err)
	require.Len(t, baskets, 3)

	assert.Equal(t, "Rami Levy", baskets[0].ChainID)
	assert.Equal(t, 5.0, *baskets[0].Total)
	assert.Equal(t, "Shufersal", baskets[1].ChainID)
	assert.Equal(t, 8.0, *baskets[1].Total)

	// No candidates at Victory: unpriced basket ranks last.
	assert.Equal(t, "Victory", baskets[2].ChainID)
	assert.Nil(t, baskets[2].Total)
	assert.True(t, baskets[2].Breakdown[0].Substitute)
}

func TestCompare_PartialCoverageAndConfidence(t *testing.T) {
	// Only the milk item gets a priced candidate; the other line degrades
	// to a substitute and coverage drops below 1.
	svc := newTestBasketService(&itemPriceCollector{token: "חלב", price: 7.0})

	stores := []entities.Store{{ChainID: "Shufersal", DisplayName: "שופרסל"}}

	baskets, err := svc.Compare(context.Background(), []string{"חלב", "פריט שאין לו מחיר בכלל"}, stores)

	require.NoError(t, err)
	require.Len(t, baskets, 1)

	basket := baskets[0]
	require.Len(t, basket.Breakdown, 2)

	priced := basket.Breakdown[0]
	assert.False(t, priced.Substitute)
	require.NotNil(t, priced.Price)
	assert.Equal(t, 7.0, *priced.Price)

	substitute := basket.Breakdown[1]
	assert.True(t, substitute.Substitute)
	assert.Nil(t, substitute.Price)
	assert.Equal(t, 20, substitute.ConfidencePct)

	assert.Equal(t, 0.5, basket.Coverage)
	require.NotNil(t, basket.Total)
	assert.InDelta(t, 7.0, *basket.Total, 0.001)
	assert.Greater(t, basket.MatchOverall, 0.0)
	assert.LessOrEqual(t, basket.MatchOverall, 0.99)
}

func TestCompare_BreakdownPreservesItemOrder(t *testing.T) {
	svc := newTestBasketService(&chainPriceCollector{prices: map[string]float64{
		"Shufersal": 7.0,
	}})

	items := []string{"חלב", "לחם", "ביצים"}
	baskets, err := svc.Compare(context.Background(), items, []entities.Store{{ChainID: "Shufersal"}})

	require.NoError(t, err)
	require.Len(t, baskets[0].Breakdown, 3)
	for i, line := range baskets[0].Breakdown {
		assert.Equal(t, items[i], line.Item)
	}
}

func TestCompare_ValidationErrors(t *testing.T) {
	svc := newTestBasketService(&chainPriceCollector{})

	_, err := svc.Compare(context.Background(), nil, []entities.Store{{ChainID: "Shufersal"}})
	assert.Error(t, err)

	_, err = svc.Compare(context.Background(), []string{"חלב"}, nil)
	assert.Error(t, err)
}

func TestCompare_TotalIsSumOfPricedLines(t *testing.T) {
	svc := newTestBasketService(&chainPriceCollector{prices: map[string]float64{
		"Shufersal": 7.0,
	}})

	baskets, err := svc.Compare(context.Background(), []string{"חלב", "לחם"}, []entities.Store{{ChainID: "Shufersal"}})

	require.NoError(t, err)
	require.NotNil(t, baskets[0].Total)
	assert.InDelta(t, 14.0, *baskets[0].Total, 0.001)
}
