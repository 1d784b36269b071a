package repositories

import "context"

// PriceRow is one entry in a static price table, built offline from chain
// price feeds (TSV dumps or a database load).
type PriceRow struct {
	ChainID  string
	Product  string
	Brand    string
	SizeText string
	Price    float64
	Currency string
}

// PriceTableRepository looks up price-table rows matching a free-text query,
// optionally scoped to one chain. Implementations exist for on-disk TSV
// tables and for Postgres.
type PriceTableRepository interface {
	Lookup(ctx context.Context, query, chainID string, limit int) ([]PriceRow, error)
}
