package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamgl/basketcompare/backend/internal/application/services"
	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

type fixedGeo struct{}

func (fixedGeo) Geocode(_ context.Context, _ string) (*entities.Location, error) {
	return &entities.Location{Latitude: 32.08, Longitude: 34.78}, nil
}

func (fixedGeo) FindNearbySupermarkets(_ context.Context, _ entities.Location, _ int) ([]*entities.Store, error) {
	return []*entities.Store{
		{DisplayName: "שופרסל דיל"},
		{DisplayName: "רמי לוי"},
	}, nil
}

type fixedCollector struct{}

func (fixedCollector) Name() string { return "fixed" }

func (fixedCollector) Collect(_ context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	price := 6.0
	if chainHint == "Rami Levy" {
		price = 5.0
	}
	return []entities.Candidate{{
		Query:    variant,
		Title:    variant,
		Price:    &price,
		Currency: "ILS",
		Merchant: chainHint,
		Source:   entities.SourceStructuredShopping,
	}}, nil
}

type nopFetcher struct{}

func (nopFetcher) FetchProduct(_ context.Context, _ string) (*providers.StructuredProduct, error) {
	return nil, nil
}

func newTestPlanHandler() *PlanHandler {
	scoring := config.ScoringConfig{
		BaseStructuredShopping: 30, BaseSiteScopedWeb: 26, BaseEstimated: 15,
		PricePresentBonus: 25, PriceAbsentBonus: 8, ChainMatchBonus: 15,
		BrandMatchBonus: 10, SizeMatchBonus: 8, StructuredIDBonus: 10,
		ConsensusBonus: 10, NoMatchConfidence: 20,
	}
	scorer := services.NewScoringService(scoring, 1.15)
	local := services.NewSelectionService(scorer)
	baskets := services.NewBasketService(
		services.NewVariantService(),
		services.NewCollectorRunner([]providers.CandidateCollector{fixedCollector{}}, nil, 60),
		services.NewNormalizerService(),
		services.NewEnrichmentService(nopFetcher{}, 2),
		services.NewPoolFilterService(24, 6, 5),
		scorer,
		local,
		local,
		4,
	)
	locator := services.NewStoreLocatorService(fixedGeo{}, 6)
	return NewPlanHandler(locator, baskets, 3)
}

func postPlan(t *testing.T, handler *PlanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.CreatePlan(rec, req)
	return rec
}

func TestCreatePlan_ItemsAsArray(t *testing.T) {
	rec := postPlan(t, newTestPlanHandler(), `{"address": "תל אביב", "items": ["חלב", "לחם"]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items   []string               `json:"items"`
		Stores  int                    `json:"stores"`
		Baskets []entities.StoreBasket `json:"baskets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"חלב", "לחם"}, resp.Items)
	assert.Equal(t, 2, resp.Stores)
	require.Len(t, resp.Baskets, 2)

	// Cheapest chain first.
	assert.Equal(t, "Rami Levy", resp.Baskets[0].ChainID)
	require.NotNil(t, resp.Baskets[0].Total)
	assert.InDelta(t, 10.0, *resp.Baskets[0].Total, 0.001)
}

func TestCreatePlan_ItemsAsNewlineString(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"address": "תל אביב", "items": "חלב\nלחם\n\nחלב"})
	rec := postPlan(t, newTestPlanHandler(), string(body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Blank lines and case-insensitive duplicates are dropped.
	assert.Equal(t, []string{"חלב", "לחם"}, resp.Items)
}

func TestCreatePlan_MissingAddress(t *testing.T) {
	rec := postPlan(t, newTestPlanHandler(), `{"items": ["חלב"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlan_EmptyItems(t *testing.T) {
	rec := postPlan(t, newTestPlanHandler(), `{"address": "תל אביב", "items": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlan_InvalidItemsShape(t *testing.T) {
	rec := postPlan(t, newTestPlanHandler(), `{"address": "תל אביב", "items": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlan_InvalidJSON(t *testing.T) {
	rec := postPlan(t, newTestPlanHandler(), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlan_TooManyItems(t *testing.T) {
	items := make([]string, maxPlanItems+1)
	for i := range items {
		items[i] = "פריט " + strings.Repeat("א", i+1)
	}
	payload, _ := json.Marshal(map[string]interface{}{"address": "תל אביב", "items": items})

	rec := postPlan(t, newTestPlanHandler(), string(payload))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
