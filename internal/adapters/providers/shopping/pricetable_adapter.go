package shopping

import (
	"context"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/internal/domain/repositories"
)

const priceTableLookupLimit = 8

// PriceTableAdapter turns a local price table into a candidate collector.
// Table rows are historical reference prices, so candidates carry the
// estimated source class and no link.
type PriceTableAdapter struct {
	repo repositories.PriceTableRepository
}

// NewPriceTableAdapter creates a collector backed by a price table repository.
func NewPriceTableAdapter(repo repositories.PriceTableRepository) *PriceTableAdapter {
	return &PriceTableAdapter{repo: repo}
}

var _ providers.CandidateCollector = (*PriceTableAdapter)(nil)

// Name identifies the provider in logs and cache keys.
func (a *PriceTableAdapter) Name() string {
	return "pricetable"
}

// Collect looks the variant up in the table, scoped to the hinted chain
// when one is given.
func (a *PriceTableAdapter) Collect(ctx context.Context, variant, chainHint string) ([]entities.Candidate, error) {
	chainID := entities.NormalizeChain(chainHint)
	rows, err := a.repo.Lookup(ctx, variant, chainID, priceTableLookupLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		title := row.Product
		if row.Brand != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(row.Brand)) {
			title = row.Brand + " " + title
		}
		if row.SizeText != "" {
			title = title + " " + row.SizeText
		}

		price := row.Price
		currency := row.Currency
		if currency == "" {
			currency = entities.DefaultCurrency
		}

		candidates = append(candidates, entities.Candidate{
			Query:    variant,
			Title:    title,
			Price:    &price,
			Currency: currency,
			Merchant: row.ChainID,
			SizeText: row.SizeText,
			Brand:    row.Brand,
			Source:   entities.SourceEstimated,
		})
	}
	return candidates, nil
}
