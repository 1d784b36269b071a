package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	googleNearbyURL        = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultNearbyCacheTTL  = 60 * 60 * 6
	defaultHTTPTimeout     = 8 * time.Second
)

// GoogleGeolocationProvider implements GeolocationProvider using the Google
// Maps Geocoding and Places Nearby Search APIs.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	geocodeURL string
	nearbyURL  string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider.
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, cache, googleGeocodeURL, googleNearbyURL, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding endpoints and HTTP client (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey string, cache providers.CacheProvider, geocodeURL, nearbyURL string, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(geocodeURL) == "" {
		geocodeURL = googleGeocodeURL
	}
	if strings.TrimSpace(nearbyURL) == "" {
		nearbyURL = googleNearbyURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		geocodeURL: geocodeURL,
		nearbyURL:  nearbyURL,
	}
}

// Geocode converts a free-text address to coordinates.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (*entities.Location, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	cacheKey := "geo:geocode:" + hashKey(strings.ToLower(trimmed))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var loc entities.Location
			if err := json.Unmarshal(cached, &loc); err == nil && (loc.Latitude != 0 || loc.Longitude != 0) {
				return &loc, nil
			}
		}
	}

	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("region", "il")
	params.Set("language", "he")
	params.Set("key", g.apiKey)

	var payload googleGeocodeResponse
	if err := g.getJSON(ctx, g.geocodeURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return nil, statusError("geocode", payload.Status, payload.ErrorMessage)
	}

	loc := entities.Location{
		Latitude:  payload.Results[0].Geometry.Location.Lat,
		Longitude: payload.Results[0].Geometry.Location.Lng,
	}

	if g.cache != nil {
		if data, err := json.Marshal(loc); err == nil {
			_ = g.cache.Set(ctx, cacheKey, data, defaultGeocodeCacheTTL)
		}
	}

	return &loc, nil
}

// FindNearbySupermarkets returns supermarket places within the radius.
func (g *GoogleGeolocationProvider) FindNearbySupermarkets(ctx context.Context, center entities.Location, radiusMeters int) ([]*entities.Store, error) {
	if radiusMeters <= 0 {
		radiusMeters = 3000
	}

	cacheKey := "geo:nearby:" + hashKey(fmt.Sprintf("%.4f,%.4f,%d", center.Latitude, center.Longitude, radiusMeters))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var stores []*entities.Store
			if err := json.Unmarshal(cached, &stores); err == nil && len(stores) > 0 {
				return stores, nil
			}
		}
	}

	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Latitude, center.Longitude))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("type", "supermarket")
	params.Set("language", "he")
	params.Set("key", g.apiKey)

	var payload googleNearbyResponse
	if err := g.getJSON(ctx, g.nearbyURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Status == "ZERO_RESULTS" {
		return []*entities.Store{}, nil
	}
	if payload.Status != "OK" {
		return nil, statusError("nearby search", payload.Status, payload.ErrorMessage)
	}

	stores := make([]*entities.Store, 0, len(payload.Results))
	for _, result := range payload.Results {
		if result.Name == "" {
			continue
		}
		stores = append(stores, &entities.Store{
			DisplayName: result.Name,
			Address:     firstNonEmpty(result.Vicinity, result.FormattedAddress),
			PlaceID:     result.PlaceID,
			Rating:      result.Rating,
			Location: entities.Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
		})
	}

	if g.cache != nil && len(stores) > 0 {
		if data, err := json.Marshal(stores); err == nil {
			_ = g.cache.Set(ctx, cacheKey, data, defaultNearbyCacheTTL)
		}
	}

	return stores, nil
}

func (g *GoogleGeolocationProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build maps request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("maps request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("maps request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode maps response: %w", err)
	}
	return nil
}

func statusError(op, status, message string) error {
	if message != "" {
		return fmt.Errorf("%s failed: %s - %s", op, status, message)
	}
	return fmt.Errorf("%s failed: %s", op, status)
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleNearbyResponse struct {
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Results      []googleNearbyResult `json:"results"`
}

type googleNearbyResult struct {
	Name             string         `json:"name"`
	PlaceID          string         `json:"place_id"`
	Vicinity         string         `json:"vicinity"`
	FormattedAddress string         `json:"formatted_address"`
	Rating           float64        `json:"rating"`
	Geometry         googleGeometry `json:"geometry"`
}
