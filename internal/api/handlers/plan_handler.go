package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/application/services"
	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

const maxPlanItems = 40

// PlanHandler handles shopping plan requests.
type PlanHandler struct {
	locator *services.StoreLocatorService
	baskets *services.BasketService

	defaultRadiusKm float64
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(locator *services.StoreLocatorService, baskets *services.BasketService, defaultRadiusKm float64) *PlanHandler {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 3
	}
	return &PlanHandler{
		locator:         locator,
		baskets:         baskets,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// planRequest accepts items either as a JSON array or as one newline-joined
// string, matching what shopping-list frontends tend to send.
type planRequest struct {
	Address  string          `json:"address"`
	RadiusKm float64         `json:"radius_km"`
	Items    json.RawMessage `json:"items"`
}

type planResponse struct {
	Address  string                 `json:"address"`
	Items    []string               `json:"items"`
	Stores   int                    `json:"stores"`
	Baskets  []entities.StoreBasket `json:"baskets"`
	Currency string                 `json:"currency"`
}

// CreatePlan handles POST /api/plan.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address is required")
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(items) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	if len(items) > maxPlanItems {
		respondWithError(w, http.StatusBadRequest, "too many items")
		return
	}

	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = h.defaultRadiusKm
	}

	stores, err := h.locator.Locate(r.Context(), address, radiusKm)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	baskets, err := h.baskets.Compare(r.Context(), items, stores)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, planResponse{
		Address:  address,
		Items:    items,
		Stores:   len(stores),
		Baskets:  baskets,
		Currency: entities.DefaultCurrency,
	})
}

// parseItems accepts ["milk","bread"] or "milk\nbread".
func parseItems(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanItems(list), nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return cleanItems(strings.Split(joined, "\n")), nil
	}

	return nil, errInvalidItems
}

var errInvalidItems = &itemsError{}

type itemsError struct{}

func (*itemsError) Error() string {
	return "items must be a string array or a newline-separated string"
}

func cleanItems(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var items []string
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, trimmed)
	}
	return items
}
