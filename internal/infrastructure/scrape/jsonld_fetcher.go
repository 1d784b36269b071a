package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

const (
	defaultFetchTimeout = 5 * time.Second
	userAgent           = "basketcompare/1.0 (+https://github.com/noamgl/basketcompare)"
)

// JSONLDFetcher extracts product attributes from schema.org Product markup
// embedded in offer pages as application/ld+json scripts.
type JSONLDFetcher struct {
	httpClient *http.Client
}

// NewJSONLDFetcher creates a fetcher with a short scrape timeout; enrichment
// is best-effort and must never hold up selection.
func NewJSONLDFetcher(httpClient *http.Client) *JSONLDFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &JSONLDFetcher{httpClient: httpClient}
}

var _ providers.ProductPageFetcher = (*JSONLDFetcher)(nil)

// FetchProduct downloads the page and returns the first Product node found
// in its JSON-LD blocks.
func (f *JSONLDFetcher) FetchProduct(ctx context.Context, pageURL string) (*providers.StructuredProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("product page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	var product *providers.StructuredProduct
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if p := parseProductNode(sel.Text()); p != nil {
			product = p
			return false
		}
		return true
	})

	if product == nil {
		return nil, fmt.Errorf("no product markup found")
	}
	return product, nil
}

// ldNode is the loosely typed shape of a JSON-LD node; offers and brand come
// in several forms across sites.
type ldNode struct {
	Type   json.RawMessage `json:"@type"`
	Graph  []ldNode        `json:"@graph"`
	Name   string          `json:"name"`
	Brand  json.RawMessage `json:"brand"`
	GTIN13 string          `json:"gtin13"`
	GTIN   string          `json:"gtin"`
	SKU    string          `json:"sku"`
	Size   string          `json:"size"`
	Weight json.RawMessage `json:"weight"`
	Offers json.RawMessage `json:"offers"`
}

type ldOffer struct {
	Price         json.RawMessage `json:"price"`
	PriceCurrency string          `json:"priceCurrency"`
}

func parseProductNode(raw string) *providers.StructuredProduct {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var nodes []ldNode
	var single ldNode
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		nodes = append(nodes, single)
		nodes = append(nodes, single.Graph...)
	} else {
		var list []ldNode
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil
		}
		nodes = list
	}

	for _, node := range nodes {
		if !isProductType(node.Type) {
			continue
		}
		product := &providers.StructuredProduct{
			Name:     node.Name,
			Brand:    parseBrand(node.Brand),
			GTIN:     firstNonEmpty(node.GTIN13, node.GTIN, node.SKU),
			SizeText: node.Size,
		}
		if price, currency, ok := parseOffer(node.Offers); ok {
			product.Price = &price
			product.Currency = currency
		}
		return product
	}
	return nil
}

func isProductType(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(s, "Product")
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, t := range list {
			if strings.EqualFold(t, "Product") {
				return true
			}
		}
	}
	return false
}

// parseBrand handles both {"@type":"Brand","name":"..."} and plain strings.
func parseBrand(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// parseOffer handles a single offer object, an offer list, and price values
// encoded as either number or string.
func parseOffer(raw json.RawMessage) (float64, string, bool) {
	if len(raw) == 0 {
		return 0, "", false
	}
	var offer ldOffer
	if err := json.Unmarshal(raw, &offer); err == nil {
		if price, ok := parsePriceValue(offer.Price); ok {
			return price, offer.PriceCurrency, true
		}
	}
	var offerList []ldOffer
	if err := json.Unmarshal(raw, &offerList); err == nil {
		for _, o := range offerList {
			if price, ok := parsePriceValue(o.Price); ok {
				return price, o.PriceCurrency, true
			}
		}
	}
	return 0, "", false
}

func parsePriceValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil && num > 0 {
		return num, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if num, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && num > 0 {
			return num, true
		}
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
