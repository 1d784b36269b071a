package main

import (
	"context"
	"log"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/noamgl/basketcompare/backend/internal/adapters/pricetable"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/postgres"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

const createPriceRows = `
CREATE TABLE IF NOT EXISTS price_rows (
	id SERIAL PRIMARY KEY,
	chain_id TEXT NOT NULL,
	product TEXT NOT NULL,
	brand TEXT,
	size_text TEXT,
	price NUMERIC(10,2) NOT NULL,
	currency TEXT NOT NULL DEFAULT 'ILS'
)`

// Loads a TSV price table into the price_rows table. Set PRICE_TABLE_PATH to
// the file to import and RESET_DB=true to truncate first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.PriceTable.Path == "" {
		log.Fatal("PRICE_TABLE_PATH is required")
	}

	table, err := pricetable.NewFileAdapter(cfg.PriceTable.Path)
	if err != nil {
		log.Fatalf("Failed to load price table %s: %v", cfg.PriceTable.Path, err)
	}
	log.Printf("Loaded %d price rows from %s", table.Len(), cfg.PriceTable.Path)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, createPriceRows); err != nil {
		log.Fatalf("Failed to create price_rows table: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating price_rows before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, "TRUNCATE TABLE price_rows RESTART IDENTITY"); err != nil {
			log.Fatalf("Failed to reset price_rows: %v", err)
		}
	}

	if table.Len() == 0 {
		log.Println("Price table is empty, nothing to seed")
		return
	}

	db := goqu.New("postgres", pgClient.DB())
	records := make([]goqu.Record, 0, table.Len())
	for _, row := range table.Rows() {
		records = append(records, goqu.Record{
			"chain_id":  row.ChainID,
			"product":   row.Product,
			"brand":     row.Brand,
			"size_text": row.SizeText,
			"price":     row.Price,
			"currency":  row.Currency,
		})
	}

	insertSQL, args, err := db.Insert("price_rows").Rows(records).ToSQL()
	if err != nil {
		log.Fatalf("Failed to build insert: %v", err)
	}
	if _, err := pgClient.DB().ExecContext(ctx, insertSQL, args...); err != nil {
		log.Fatalf("Failed to insert price rows: %v", err)
	}

	log.Printf("Seeded %d price rows", len(records))
}
