package model

import "time"

type Source string

const (
	SourceAmazon   Source = "Amazon"
	SourceFlipkart Source = "Flipkart"
)

// Sources lists every supported site in merge order.
var Sources = []Source{SourceAmazon, SourceFlipkart}

// SourceRecord is one listing card as extracted from a search page.
// Nil pointers mean no selector matched; an empty string means the element was there but empty.
type SourceRecord struct {
	ID        string
	Source    Source
	Title     string
	Features  *string // só Flipkart tem lista de especificações
	PriceRaw  *string
	RatingRaw *string
	PageURL   string
	Page      int
	ScrapedAt time.Time
}

// CanonicalListing is the structured view of a SourceRecord after price
// canonicalization and text normalization.
type CanonicalListing struct {
	ID           string
	Source       Source
	Title        string
	CombinedText string
	Brand        string
	RAMGB        *int
	StorageGB    int
	Processor    string
	GPU          string
	DisplayInch  *float64
	Price        *float64
	Rating       *string
}

// Dataset is the merged output. After imputation every row has Price,
// RAMGB and DisplayInch set.
type Dataset struct {
	RunID    string
	Listings []CanonicalListing
}

// FeatureRow is the record consumed by the price model: six features plus the target.
type FeatureRow struct {
	Brand       string
	RAM         int
	StorageGB   int
	Processor   string
	GPU         string
	DisplayInch float64
	Price       float64
}

// Features returns the training view of a listing. Callers must only use it
// on imputed listings.
func (l CanonicalListing) Features() FeatureRow {
	row := FeatureRow{
		Brand:     l.Brand,
		StorageGB: l.StorageGB,
		Processor: l.Processor,
		GPU:       l.GPU,
	}
	if l.RAMGB != nil {
		row.RAM = *l.RAMGB
	}
	if l.DisplayInch != nil {
		row.DisplayInch = *l.DisplayInch
	}
	if l.Price != nil {
		row.Price = *l.Price
	}
	return row
}
