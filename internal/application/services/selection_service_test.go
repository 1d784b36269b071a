package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

func newTestSelector() *SelectionService {
	return NewSelectionService(NewScoringService(testScoringConfig(), 1.15))
}

func TestSelectBest_EmptyPoolYieldsSubstitute(t *testing.T) {
	svc := newTestSelector()

	choice, err := svc.SelectBest(context.Background(), "חלב", "Shufersal", nil)

	require.NoError(t, err)
	assert.True(t, choice.Substitute)
	assert.Nil(t, choice.Price)
	assert.Equal(t, 20, choice.ConfidencePct)
	assert.Equal(t, "ILS", choice.Currency)
}

func TestSelectBest_UnitPriceFairness(t *testing.T) {
	svc := newTestSelector()
	normalizer := NewNormalizerService()

	// The bigger bottle costs more in absolute terms but less per liter.
	big := entities.Candidate{Title: "שמן זית 1 ליטר", Price: floatPtr(40.0), Domain: "shop-a.co.il", Source: entities.SourceStructuredShopping}
	small := entities.Candidate{Title: "שמן זית 750 מל", Price: floatPtr(35.0), Domain: "shop-b.co.il", Source: entities.SourceStructuredShopping}
	normalizer.Normalize(&big, "שמן זית")
	normalizer.Normalize(&small, "שמן זית")

	choice, err := svc.SelectBest(context.Background(), "שמן זית", "", []entities.Candidate{small, big})

	require.NoError(t, err)
	assert.Equal(t, "שמן זית 1 ליטר", choice.Title)
	assert.Equal(t, 40.0, *choice.Price)
}

func TestSelectBest_PricedOutranksUnpricedAtAnyPrice(t *testing.T) {
	svc := newTestSelector()
	normalizer := NewNormalizerService()

	// Expensive enough that the price term exceeds the priced/unpriced
	// confidence gap; the unpriced candidate must still lose.
	priced := entities.Candidate{Title: "שמן זית כתית 1 ליטר", Price: floatPtr(40.0), Domain: "shop-a.co.il", Source: entities.SourceStructuredShopping}
	unpriced := entities.Candidate{Title: "שמן זית כתית", Domain: "shop-b.co.il", Source: entities.SourceStructuredShopping}
	normalizer.Normalize(&priced, "שמן זית")
	normalizer.Normalize(&unpriced, "שמן זית")

	choice, err := svc.SelectBest(context.Background(), "שמן זית", "", []entities.Candidate{unpriced, priced})

	require.NoError(t, err)
	assert.False(t, choice.Substitute)
	require.NotNil(t, choice.Price)
	assert.Equal(t, 40.0, *choice.Price)
	assert.Equal(t, "שמן זית כתית 1 ליטר", choice.Title)
}

func TestSelectBest_StableTieBreak(t *testing.T) {
	svc := newTestSelector()

	// Identical candidates except title: collection order decides.
	first := entities.Candidate{Title: "חלב תנובה א", Price: floatPtr(6.0), Domain: "shop-a.co.il", Source: entities.SourceStructuredShopping}
	second := entities.Candidate{Title: "חלב תנובה ב", Price: floatPtr(6.0), Domain: "shop-b.co.il", Source: entities.SourceStructuredShopping}

	choice, err := svc.SelectBest(context.Background(), "חלב", "", []entities.Candidate{first, second})

	require.NoError(t, err)
	assert.Equal(t, "חלב תנובה א", choice.Title)
}

func TestSelectBest_UnpricedChoiceIsSubstitute(t *testing.T) {
	svc := newTestSelector()

	pool := []entities.Candidate{
		{Title: "מוצר ללא מחיר", Domain: "shop-a.co.il", Source: entities.SourceSiteScopedWeb},
	}

	choice, err := svc.SelectBest(context.Background(), "מוצר", "", pool)

	require.NoError(t, err)
	assert.True(t, choice.Substitute)
	assert.Nil(t, choice.Price)
}

func TestValidateChoice_AcceptsPoolPrice(t *testing.T) {
	pool := []entities.Candidate{
		{Title: "a", Price: floatPtr(7.5)},
		{Title: "b", Price: floatPtr(8.0)},
	}

	choice := entities.LineChoice{Item: "קולה", Price: floatPtr(7.5)}
	assert.NoError(t, ValidateChoice(choice, pool))
}

func TestValidateChoice_RejectsInventedPrice(t *testing.T) {
	pool := []entities.Candidate{
		{Title: "a", Price: floatPtr(7.5)},
	}

	choice := entities.LineChoice{Item: "קולה", Price: floatPtr(7.49)}
	assert.Error(t, ValidateChoice(choice, pool))
}

func TestValidateChoice_NilPriceAlwaysValid(t *testing.T) {
	choice := entities.LineChoice{Item: "קולה", Substitute: true}
	assert.NoError(t, ValidateChoice(choice, nil))
}
