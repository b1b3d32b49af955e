package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"laptopprj/internal/model"
)

// WriteSQLite replaces the file at path with a single-table snapshot of the dataset.
func WriteSQLite(path string, ds model.Dataset) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE laptops (
			id           TEXT,
			run_id       TEXT,
			source       TEXT NOT NULL,
			title        TEXT NOT NULL,
			combined_text TEXT,
			brand        TEXT,
			ram_gb       INTEGER,
			storage_gb   INTEGER,
			processor    TEXT,
			gpu          TEXT,
			display_inch REAL,
			price        REAL NOT NULL,
			rating       TEXT
		)`); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO laptops
		(id, run_id, source, title, combined_text, brand, ram_gb, storage_gb, processor, gpu, display_inch, price, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range ds.Listings {
		if _, err := stmt.Exec(l.ID, ds.RunID, string(l.Source), l.Title, l.CombinedText, l.Brand,
			l.RAMGB, l.StorageGB, l.Processor, l.GPU, l.DisplayInch, l.Price, l.Rating); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert %q: %w", l.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_laptops_brand ON laptops(brand)`,
		`CREATE INDEX IF NOT EXISTS idx_laptops_source ON laptops(source)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}
