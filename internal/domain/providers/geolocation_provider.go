package providers

import (
	"context"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

// GeolocationProvider defines the interface for resolving addresses and
// discovering nearby supermarket branches. The aggregation engine consumes
// its output as an opaque store list.
type GeolocationProvider interface {
	// Geocode converts a free-text address to coordinates
	Geocode(ctx context.Context, address string) (*entities.Location, error)

	// FindNearbySupermarkets returns supermarket places within a radius,
	// with their raw names (chain normalization happens in the store locator)
	FindNearbySupermarkets(ctx context.Context, center entities.Location, radiusMeters int) ([]*entities.Store, error)
}
