package geolocation

import (
	"context"
	"math"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

// MockGeolocationProvider returns a fixed Tel Aviv neighborhood. Used in
// development and tests so the pipeline runs without a Maps API key.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider.
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

var mockCenter = entities.Location{Latitude: 32.0853, Longitude: 34.7818}

var mockStores = []*entities.Store{
	{DisplayName: "שופרסל דיל אבן גבירול", Address: "אבן גבירול 50, תל אביב", PlaceID: "mock-shufersal", Rating: 4.1,
		Location: entities.Location{Latitude: 32.0809, Longitude: 34.7812}},
	{DisplayName: "רמי לוי שיווק השקמה", Address: "דרך מנחם בגין 132, תל אביב", PlaceID: "mock-rami-levy", Rating: 4.0,
		Location: entities.Location{Latitude: 32.0740, Longitude: 34.7925}},
	{DisplayName: "ויקטורי סיטי", Address: "אלנבי 100, תל אביב", PlaceID: "mock-victory", Rating: 3.9,
		Location: entities.Location{Latitude: 32.0668, Longitude: 34.7708}},
	{DisplayName: "טיב טעם דיזנגוף", Address: "דיזנגוף 212, תל אביב", PlaceID: "mock-tiv-taam", Rating: 4.2,
		Location: entities.Location{Latitude: 32.0901, Longitude: 34.7743}},
	{DisplayName: "מינימרקט השכונה", Address: "שינקין 12, תל אביב", PlaceID: "mock-corner", Rating: 4.5,
		Location: entities.Location{Latitude: 32.0690, Longitude: 34.7735}},
}

// Geocode resolves any non-empty address to the mock city center.
func (m *MockGeolocationProvider) Geocode(_ context.Context, address string) (*entities.Location, error) {
	loc := mockCenter
	return &loc, nil
}

// FindNearbySupermarkets returns the fixture stores within the radius.
func (m *MockGeolocationProvider) FindNearbySupermarkets(_ context.Context, center entities.Location, radiusMeters int) ([]*entities.Store, error) {
	if radiusMeters <= 0 {
		radiusMeters = 3000
	}
	var result []*entities.Store
	for _, store := range mockStores {
		if haversineMeters(center, store.Location) <= float64(radiusMeters) {
			copied := *store
			result = append(result, &copied)
		}
	}
	return result, nil
}

// haversineMeters computes the great-circle distance between two points.
func haversineMeters(from, to entities.Location) float64 {
	const earthRadiusM = 6371000.0

	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := (to.Latitude - from.Latitude) * math.Pi / 180
	dLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}
