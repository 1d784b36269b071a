package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

// EnrichmentService backfills candidate attributes from embedded product
// markup on the offer page. Strictly best-effort: any scrape failure leaves
// the candidate unenriched, and an observed price is never overwritten.
type EnrichmentService struct {
	fetcher providers.ProductPageFetcher
	topK    int
}

// NewEnrichmentService creates an enricher fetching at most topK candidate
// pages per (item, store) pool.
func NewEnrichmentService(fetcher providers.ProductPageFetcher, topK int) *EnrichmentService {
	if topK <= 0 {
		topK = 2
	}
	return &EnrichmentService{fetcher: fetcher, topK: topK}
}

// Enrich selects the highest-potential candidates by a cheap heuristic and
// fills their missing fields from structured page data, in place.
func (s *EnrichmentService) Enrich(ctx context.Context, pool []entities.Candidate, query string) {
	if s.fetcher == nil || len(pool) == 0 {
		return
	}

	order := make([]int, 0, len(pool))
	for i := range pool {
		if pool[i].Link != "" {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return enrichPotential(&pool[order[a]], query) > enrichPotential(&pool[order[b]], query)
	})
	if len(order) > s.topK {
		order = order[:s.topK]
	}

	for _, idx := range order {
		c := &pool[idx]
		product, err := s.fetcher.FetchProduct(ctx, c.Link)
		if err != nil || product == nil {
			log.Debug().Err(err).Str("link", c.Link).Msg("enrichment fetch failed")
			continue
		}
		backfill(c, product)
	}
}

// enrichPotential ranks candidates worth a page fetch: trusted source class,
// brand hit against the query, and a present price.
func enrichPotential(c *entities.Candidate, query string) int {
	potential := 0
	if c.Source == entities.SourceSiteScopedWeb || c.Source == entities.SourceStructuredShopping {
		potential += 2
	}
	if c.Brand != "" && strings.Contains(strings.ToLower(query), strings.ToLower(c.Brand)) {
		potential += 2
	}
	if c.HasPrice() {
		potential++
	}
	return potential
}

// backfill fills only currently empty fields. A structured price is accepted
// only when the candidate had no price at all.
func backfill(c *entities.Candidate, product *providers.StructuredProduct) {
	if c.Brand == "" {
		c.Brand = product.Brand
	}
	if c.StructuredID == "" {
		c.StructuredID = product.GTIN
	}
	if c.SizeText == "" {
		c.SizeText = product.SizeText
	}
	if c.Price == nil && product.Price != nil {
		price := *product.Price
		c.Price = &price
		if c.Currency == "" || c.Currency == entities.DefaultCurrency {
			if product.Currency != "" {
				c.Currency = product.Currency
			}
		}
	}
}
