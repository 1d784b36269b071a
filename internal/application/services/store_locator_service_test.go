package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

// stubGeo returns canned geocoding and nearby results.
type stubGeo struct {
	geocodeErr error
	nearbyErr  error
	places     []*entities.Store
}

func (s *stubGeo) Geocode(_ context.Context, _ string) (*entities.Location, error) {
	if s.geocodeErr != nil {
		return nil, s.geocodeErr
	}
	return &entities.Location{Latitude: 32.08, Longitude: 34.78}, nil
}

func (s *stubGeo) FindNearbySupermarkets(_ context.Context, _ entities.Location, _ int) ([]*entities.Store, error) {
	if s.nearbyErr != nil {
		return nil, s.nearbyErr
	}
	return s.places, nil
}

func TestLocate_NormalizesChainsAndDedupes(t *testing.T) {
	geo := &stubGeo{places: []*entities.Store{
		{DisplayName: "שופרסל דיל אבן גבירול"},
		{DisplayName: "שופרסל שלי דיזנגוף"},
		{DisplayName: "רמי לוי שיווק השקמה"},
	}}
	svc := NewStoreLocatorService(geo, 6)

	stores, err := svc.Locate(context.Background(), "תל אביב", 3)

	require.NoError(t, err)
	// Two Shufersal branches collapse to one entry per chain.
	require.Len(t, stores, 2)
	assert.Equal(t, "Shufersal", stores[0].ChainID)
	assert.Equal(t, "Rami Levy", stores[1].ChainID)
}

func TestLocate_UnrecognizedStoresKeptWhenNoChainMatches(t *testing.T) {
	geo := &stubGeo{places: []*entities.Store{
		{DisplayName: "מכולת אצל משה"},
		{DisplayName: "המינימרקט של רחל"},
	}}
	svc := NewStoreLocatorService(geo, 6)

	stores, err := svc.Locate(context.Background(), "כפר קטן", 3)

	require.NoError(t, err)
	assert.Len(t, stores, 2)
	assert.Equal(t, "מכולת אצל משה", stores[0].ChainID)
}

func TestLocate_CapsStoreCount(t *testing.T) {
	geo := &stubGeo{places: []*entities.Store{
		{DisplayName: "שופרסל"},
		{DisplayName: "רמי לוי"},
		{DisplayName: "ויקטורי"},
		{DisplayName: "טיב טעם"},
	}}
	svc := NewStoreLocatorService(geo, 2)

	stores, err := svc.Locate(context.Background(), "תל אביב", 3)

	require.NoError(t, err)
	assert.Len(t, stores, 2)
}

func TestLocate_EmptyAddress(t *testing.T) {
	svc := NewStoreLocatorService(&stubGeo{}, 6)

	_, err := svc.Locate(context.Background(), "", 3)

	assert.Error(t, err)
}

func TestLocate_GeocodeFailure(t *testing.T) {
	svc := NewStoreLocatorService(&stubGeo{geocodeErr: errors.New("quota")}, 6)

	_, err := svc.Locate(context.Background(), "תל אביב", 3)

	assert.Error(t, err)
}

func TestLocate_NoResults(t *testing.T) {
	svc := NewStoreLocatorService(&stubGeo{}, 6)

	_, err := svc.Locate(context.Background(), "מדבר", 3)

	assert.Error(t, err)
}
