package repository

import (
	"database/sql"
	"fmt"

	"laptopprj/internal/model"
)

// RawRepository keeps the extracted, not yet normalized records so the
// cleaner can be re-run without crawling again.
type RawRepository struct {
	DB *sql.DB
}

func (r *RawRepository) Migrate() error {
	_, err := r.DB.Exec(`
		CREATE TABLE IF NOT EXISTS laptop_raw_listings (
			id          UUID PRIMARY KEY,
			source      VARCHAR(20) NOT NULL,
			title       TEXT        NOT NULL,
			features    TEXT,
			price_raw   TEXT,
			rating_raw  TEXT,
			page_url    TEXT        NOT NULL DEFAULT '',
			page        INTEGER     NOT NULL DEFAULT 0,
			scraped_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		ALTER TABLE laptop_raw_listings DROP COLUMN IF EXISTS listing_key;
		CREATE INDEX IF NOT EXISTS idx_laptop_raw_source ON laptop_raw_listings(source);
	`)
	return err
}

// Save stores one scraped card. Cards sharing a title are distinct rows; only
// a record with the same ID is refreshed in place.
func (r *RawRepository) Save(p model.SourceRecord) error {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM laptop_raw_listings WHERE id = $1)", p.ID).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		_, err = r.DB.Exec(`
			UPDATE laptop_raw_listings
			SET title = $1, features = $2, price_raw = $3, rating_raw = $4, page_url = $5, page = $6, scraped_at = $7
			WHERE id = $8
		`, p.Title, p.Features, p.PriceRaw, p.RatingRaw, p.PageURL, p.Page, p.ScrapedAt, p.ID)
	} else {
		_, err = r.DB.Exec(`
			INSERT INTO laptop_raw_listings
			(id, source, title, features, price_raw, rating_raw, page_url, page, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ID, string(p.Source), p.Title, p.Features, p.PriceRaw, p.RatingRaw, p.PageURL, p.Page, p.ScrapedAt)
	}

	return err
}

// DeleteBySource clears a source before a new crawl, so the table mirrors the
// latest raw export.
func (r *RawRepository) DeleteBySource(source model.Source) (int64, error) {
	res, err := r.DB.Exec("DELETE FROM laptop_raw_listings WHERE source = $1", string(source))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SaveAll stops at the first failing record.
func (r *RawRepository) SaveAll(records []model.SourceRecord) error {
	for _, p := range records {
		if err := r.Save(p); err != nil {
			return fmt.Errorf("save %s %q: %w", p.Source, p.Title, err)
		}
	}
	return nil
}

func (r *RawRepository) ListBySource(source model.Source) ([]model.SourceRecord, error) {
	rows, err := r.DB.Query(`
		SELECT id, source, title, features, price_raw, rating_raw, page_url, page, scraped_at
		FROM laptop_raw_listings
		WHERE source = $1
		ORDER BY page, scraped_at
	`, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SourceRecord
	for rows.Next() {
		var p model.SourceRecord
		var src string
		var features, price, rating sql.NullString
		if err := rows.Scan(&p.ID, &src, &p.Title, &features, &price, &rating, &p.PageURL, &p.Page, &p.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan raw listing: %w", err)
		}
		p.Source = model.Source(src)
		p.Features = nullable(features)
		p.PriceRaw = nullable(price)
		p.RatingRaw = nullable(rating)
		list = append(list, p)
	}

	return list, rows.Err()
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
