package pricetable

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/repositories"
	apperrors "github.com/noamgl/basketcompare/backend/pkg/errors"
)

// FileAdapter implements PriceTableRepository over a tab-separated file with
// columns: chain_id, product, brand, size_text, price, currency. Lines
// starting with '#' and malformed lines are skipped. The whole table is
// loaded once at startup; lookups scan in memory.
type FileAdapter struct {
	rows []repositories.PriceRow
}

// NewFileAdapter loads the price table from the given TSV path.
func NewFileAdapter(path string) (*FileAdapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to open price table %s", path), err)
	}
	defer f.Close()

	var rows []repositories.PriceRow
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
		if err != nil || price <= 0 {
			continue
		}

		row := repositories.PriceRow{
			ChainID:  entities.NormalizeChain(strings.TrimSpace(fields[0])),
			Product:  strings.TrimSpace(fields[1]),
			Brand:    strings.TrimSpace(fields[2]),
			SizeText: strings.TrimSpace(fields[3]),
			Price:    price,
			Currency: entities.DefaultCurrency,
		}
		if len(fields) >= 6 && strings.TrimSpace(fields[5]) != "" {
			row.Currency = strings.TrimSpace(fields[5])
		}
		if row.Product == "" {
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read price table", err)
	}

	return &FileAdapter{rows: rows}, nil
}

// Len returns the number of loaded rows.
func (a *FileAdapter) Len() int {
	return len(a.rows)
}

// Rows returns a copy of the loaded table, used by the database seeder.
func (a *FileAdapter) Rows() []repositories.PriceRow {
	rows := make([]repositories.PriceRow, len(a.rows))
	copy(rows, a.rows)
	return rows
}

// Lookup returns rows whose text fields contain every token of the query,
// cheapest first.
func (a *FileAdapter) Lookup(_ context.Context, query, chainID string, limit int) ([]repositories.PriceRow, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []repositories.PriceRow{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var matched []repositories.PriceRow
	for _, row := range a.rows {
		if chainID != "" && row.ChainID != chainID {
			continue
		}
		haystack := strings.ToLower(row.Product + " " + row.Brand + " " + row.SizeText)
		if !containsAllTokens(haystack, tokens) {
			continue
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price < matched[j].Price
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func containsAllTokens(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}
