package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

// SerpAPIAdapter collects structured shopping results from SerpAPI's Google
// Shopping engine. Calls are rate limited and run behind a circuit breaker
// so a struggling upstream degrades to empty results quickly.
type SerpAPIAdapter struct {
	apiKey     string
	baseURL    string
	language   string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewSerpAPIAdapter creates the structured shopping collector.
func NewSerpAPIAdapter(cfg *config.SerpAPIConfig, httpClient *http.Client) *SerpAPIAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 3
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "serpapi",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &SerpAPIAdapter{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		country:    cfg.Country,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    breaker,
	}
}

var _ providers.CandidateCollector = (*SerpAPIAdapter)(nil)

// Name identifies the provider in logs and cache keys.
func (a *SerpAPIAdapter) Name() string {
	return "serpapi"
}

// Collect queries Google Shopping for the variant, scoped toward the chain
// by appending its name to the query the way the upstream search behaves
// best. Rows without an extractable numeric price keep a nil price.
func (a *SerpAPIAdapter) Collect(ctx context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("serpapi key is not configured")
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := variant
	if chainHint != "" {
		query = variant + " " + chainHint
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	payload := result.(*serpResponse)

	candidates := make([]entities.Candidate, 0, len(payload.ShoppingResults))
	for _, row := range payload.ShoppingResults {
		c := entities.Candidate{
			Query:    variant,
			Title:    row.Title,
			Currency: entities.DefaultCurrency,
			Source:   entities.SourceStructuredShopping,
			Merchant: firstOf(row.Source, row.Merchant, row.Seller),
		}
		if row.Currency != "" {
			c.Currency = row.Currency
		}
		if row.ExtractedPrice > 0 {
			price := row.ExtractedPrice
			c.Price = &price
		}
		c.Link = firstOf(row.ProductLink, row.Link)
		c.Domain = domainOf(c.Link)
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (a *SerpAPIAdapter) search(ctx context.Context, query string) (*serpResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("hl", a.language)
	params.Set("gl", a.country)
	params.Set("num", "10")
	params.Set("api_key", a.apiKey)

	reqURL := fmt.Sprintf("%s/search.json?%s", a.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build serpapi request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}

	var payload serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode serpapi response: %w", err)
	}
	return &payload, nil
}

type serpResponse struct {
	ShoppingResults []serpShoppingRow `json:"shopping_results"`
}

type serpShoppingRow struct {
	Title          string  `json:"title"`
	ExtractedPrice float64 `json:"extracted_price"`
	Currency       string  `json:"currency"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Source         string  `json:"source"`
	Merchant       string  `json:"merchant"`
	Seller         string  `json:"seller"`
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func domainOf(link string) string {
	if link == "" {
		return ""
	}
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}
