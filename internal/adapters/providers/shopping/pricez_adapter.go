package shopping

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

// pricePattern matches shekel amounts like "₪12.90", "12.90 ש"ח", "12,90".
var pricePattern = regexp.MustCompile(`(?:₪\s*)?(\d+(?:[.,]\d{1,2})?)(?:\s*(?:₪|ש["']?ח))?`)

// PricezAdapter scrapes the site-scoped search of the Pricez price
// comparison vendor. Returned candidates carry the site-scoped source
// class, which the scorer weights with the trusted-aggregator multiplier.
type PricezAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewPricezAdapter creates the site-scoped web collector.
func NewPricezAdapter(cfg *config.PricezConfig, httpClient *http.Client) *PricezAdapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &PricezAdapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

var _ providers.CandidateCollector = (*PricezAdapter)(nil)

// Name identifies the provider in logs and cache keys.
func (a *PricezAdapter) Name() string {
	return "pricez"
}

// Collect scrapes the vendor's search results page. The chain hint narrows
// per-chain price cells when the result row lists them; rows without a
// parseable price are kept unpriced rather than guessed.
func (a *PricezAdapter) Collect(ctx context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	reqURL := fmt.Sprintf("%s/Search?query=%s", a.baseURL, url.QueryEscape(variant))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pricez request: %w", err)
	}
	req.Header.Set("User-Agent", "basketcompare/1.0 (+contact@basketcompare.dev)")
	req.Header.Set("Accept-Language", "he-IL,he;q=0.9")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pricez request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pricez returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pricez page: %w", err)
	}

	domain := domainOf(a.baseURL)
	var candidates []entities.Candidate
	doc.Find(".product-item, .search-result, .product-card, article").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".product-title, .title, h2, h3").First().Text())
		if title == "" {
			return
		}

		c := entities.Candidate{
			Query:    variant,
			Title:    title,
			Currency: entities.DefaultCurrency,
			Domain:   domain,
			Merchant: "Pricez",
			Source:   entities.SourceSiteScopedWeb,
		}

		if href, ok := sel.Find("a").First().Attr("href"); ok {
			c.Link = absoluteURL(a.baseURL, href)
		}

		priceText := strings.TrimSpace(sel.Find(".price, .product-price, .min-price").First().Text())
		if price, ok := parseShekelPrice(priceText); ok {
			c.Price = &price
		}

		if sizeText := strings.TrimSpace(sel.Find(".size, .unit, .quantity").First().Text()); sizeText != "" {
			c.SizeText = sizeText
		}

		candidates = append(candidates, c)
	})
	return candidates, nil
}

// parseShekelPrice extracts a numeric amount from a shekel price string.
func parseShekelPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + "/" + strings.TrimLeft(href, "/")
}
