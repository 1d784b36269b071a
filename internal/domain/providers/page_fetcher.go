package providers

import "context"

// StructuredProduct holds attributes extracted from embedded product markup
// (JSON-LD) on an offer page.
type StructuredProduct struct {
	Name     string
	Brand    string
	GTIN     string
	SizeText string
	Price    *float64
	Currency string
}

// ProductPageFetcher fetches an offer page and extracts structured product
// data. A scrape failure is reported as an error; the enricher treats it as
// best-effort and leaves the candidate untouched.
type ProductPageFetcher interface {
	FetchProduct(ctx context.Context, pageURL string) (*StructuredProduct, error)
}
