package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"laptopprj/internal/model"
)

// ListingRepository stores the canonical dataset consumed by model training.
type ListingRepository struct {
	DB *pgxpool.Pool
}

var listingColumns = []string{
	"id", "run_id", "source", "title", "combined_text", "brand", "ram_gb", "storage_gb",
	"processor", "gpu", "display_inch", "price", "rating",
}

func (r *ListingRepository) Migrate(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS laptop_listings (
			id            UUID PRIMARY KEY,
			run_id        UUID          NOT NULL,
			source        VARCHAR(20)   NOT NULL,
			title         TEXT          NOT NULL,
			combined_text TEXT          NOT NULL,
			brand         TEXT          NOT NULL,
			ram_gb        INTEGER       NOT NULL,
			storage_gb    INTEGER       NOT NULL,
			processor     TEXT          NOT NULL,
			gpu           TEXT          NOT NULL,
			display_inch  NUMERIC(4,1)  NOT NULL,
			price         NUMERIC(12,2) NOT NULL,
			rating        TEXT,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_laptop_listings_brand ON laptop_listings(brand);
	`)
	return err
}

// ReplaceAll swaps the table contents for ds inside one transaction.
func (r *ListingRepository) ReplaceAll(ctx context.Context, ds model.Dataset) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM laptop_listings`); err != nil {
		return fmt.Errorf("clear laptop_listings: %w", err)
	}

	runID, err := uuid.Parse(ds.RunID)
	if err != nil {
		runID = uuid.New()
	}

	rows := make([][]any, 0, len(ds.Listings))
	for _, l := range ds.Listings {
		id, err := uuid.Parse(l.ID)
		if err != nil {
			id = uuid.New()
		}
		rows = append(rows, []any{
			id, runID, string(l.Source), l.Title, l.CombinedText, l.Brand, l.RAMGB, l.StorageGB,
			l.Processor, l.GPU, l.DisplayInch, l.Price, l.Rating,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"laptop_listings"}, listingColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy laptop_listings: %w", err)
	}
	log.Printf("[repository] %d linhas gravadas em laptop_listings (run %s)", n, runID)

	return tx.Commit(ctx)
}

// CountBySource is used after a write to confirm what landed in the table.
func (r *ListingRepository) CountBySource(ctx context.Context) (map[model.Source]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT source, COUNT(*) FROM laptop_listings GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.Source]int{}
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, err
		}
		counts[model.Source(src)] = n
	}
	return counts, rows.Err()
}
