package services

import (
	"context"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

// StoreLocatorService resolves a free-text address into the nearby
// supermarket branches the engine will price against.
type StoreLocatorService struct {
	geo             providers.GeolocationProvider
	maxSupermarkets int
}

// NewStoreLocatorService creates a store locator capped at maxSupermarkets.
func NewStoreLocatorService(geo providers.GeolocationProvider, maxSupermarkets int) *StoreLocatorService {
	if maxSupermarkets <= 0 {
		maxSupermarkets = 6
	}
	return &StoreLocatorService{geo: geo, maxSupermarkets: maxSupermarkets}
}

// Locate geocodes the address and returns nearby stores with normalized
// chain identifiers. Branches of recognized chains are preferred; when none
// are recognized the raw places are kept so small towns still get results.
func (s *StoreLocatorService) Locate(ctx context.Context, address string, radiusKm float64) ([]entities.Store, error) {
	if address == "" {
		return nil, apperrors.NewValidationError("address is required")
	}
	if radiusKm <= 0 {
		radiusKm = 3
	}

	location, err := s.geo.Geocode(ctx, address)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to geocode address", err)
	}

	places, err := s.geo.FindNearbySupermarkets(ctx, *location, int(radiusKm*1000))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to find nearby supermarkets", err)
	}

	var known, all []entities.Store
	seenChains := make(map[string]bool)
	for _, place := range places {
		store := *place
		store.ChainID = entities.NormalizeChain(place.DisplayName)
		all = append(all, store)
		if entities.IsKnownChain(store.ChainID) && !seenChains[store.ChainID] {
			seenChains[store.ChainID] = true
			known = append(known, store)
		}
	}

	selected := known
	if len(selected) == 0 {
		selected = all
	}
	if len(selected) > s.maxSupermarkets {
		selected = selected[:s.maxSupermarkets]
	}
	if len(selected) == 0 {
		return nil, apperrors.NewNotFoundError("no supermarkets found within radius")
	}
	return selected, nil
}
