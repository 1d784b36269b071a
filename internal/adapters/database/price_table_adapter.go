package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/noamgl/basketcompare/backend/internal/domain/repositories"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

// PriceTableAdapter implements PriceTableRepository on Postgres. The
// price_rows table is loaded offline from chain price feeds.
type PriceTableAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPriceTableAdapter creates a new Postgres price table adapter.
func NewPriceTableAdapter(client *postgres.Client) repositories.PriceTableRepository {
	return &PriceTableAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Lookup finds rows whose product, brand or size text matches every token of
// the query, optionally scoped to one chain.
func (a *PriceTableAdapter) Lookup(ctx context.Context, query, chainID string, limit int) ([]repositories.PriceRow, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []repositories.PriceRow{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	ds := a.db.Select("chain_id", "product", "brand", "size_text", "price", "currency").
		From("price_rows")

	for _, token := range tokens {
		pattern := "%" + token + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("product").ILike(pattern),
			goqu.I("brand").ILike(pattern),
			goqu.I("size_text").ILike(pattern),
		))
	}
	if chainID != "" {
		ds = ds.Where(goqu.Ex{"chain_id": chainID})
	}

	sqlQuery, args, err := ds.Order(goqu.I("price").Asc()).Limit(uint(limit)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build price table query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query price table", err)
	}
	defer rows.Close()

	var result []repositories.PriceRow
	for rows.Next() {
		var row repositories.PriceRow
		var brand, sizeText, currency sql.NullString

		if err := rows.Scan(&row.ChainID, &row.Product, &brand, &sizeText, &row.Price, &currency); err != nil {
			return nil, apperrors.NewInternalError("failed to scan price row", err)
		}

		row.Brand = brand.String
		row.SizeText = sizeText.String
		row.Currency = currency.String
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read price rows", err)
	}

	return result, nil
}
