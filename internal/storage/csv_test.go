package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"laptopprj/internal/model"
)

func strp(s string) *string { return &s }

func TestRawCSVFlipkartKeepsMissingAsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flipkart_laptops.csv")
	in := []model.SourceRecord{
		{Source: model.SourceFlipkart, Title: "ASUS Vivobook, 15", PriceRaw: strp("₹32,990"), RatingRaw: strp("4.3"), Features: strp("8 GB RAM | 512 GB SSD")},
		{Source: model.SourceFlipkart, Title: "Acer Aspire Lite"},
	}

	if err := WriteRawCSV(path, model.SourceFlipkart, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadRawCSV(path, model.SourceFlipkart)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 {
		t.Fatalf("read %d records, want 2", len(out))
	}
	if out[0].Title != "ASUS Vivobook, 15" || *out[0].PriceRaw != "₹32,990" || *out[0].Features != "8 GB RAM | 512 GB SSD" {
		t.Errorf("first record = %+v", out[0])
	}
	if out[1].PriceRaw != nil || out[1].RatingRaw != nil || out[1].Features != nil {
		t.Errorf("empty cells should read back as nil: %+v", out[1])
	}
	if out[0].Source != model.SourceFlipkart || out[0].ID == "" {
		t.Errorf("source/id not set: %+v", out[0])
	}
}

func TestReadRawCSVMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flipkart_laptops.csv")
	if err := os.WriteFile(path, []byte("Title,Price,Rating\nHP,100,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadRawCSV(path, model.SourceFlipkart); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("flipkart without Features: err = %v, want ErrMissingColumn", err)
	}
	// The same file is a complete Amazon export.
	recs, err := ReadRawCSV(path, model.SourceAmazon)
	if err != nil || len(recs) != 1 {
		t.Errorf("amazon read = %d records, %v", len(recs), err)
	}
}

func TestReadRawCSVSkipsRowsWithoutTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amazon_laptops.csv")
	body := "Title,Price,Rating\n,45990,4.1\nDell Vostro,38990,\n  ,1000,\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	recs, err := ReadRawCSV(path, model.SourceAmazon)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Title != "Dell Vostro" || recs[0].RatingRaw != nil {
		t.Errorf("records = %+v", recs)
	}
	if !strings.Contains(logs.String(), "2 linhas sem título") {
		t.Errorf("skipped rows not logged: %q", logs.String())
	}

	_, skipped, err := readRawCSV(path, model.SourceAmazon)
	if err != nil || skipped != 2 {
		t.Errorf("skipped = %d, %v; want 2", skipped, err)
	}
}

func sampleDataset() model.Dataset {
	ram, display, price := 8, 15.6, 45990.0
	return model.Dataset{
		RunID: "run-1",
		Listings: []model.CanonicalListing{{
			ID:           "a1",
			Source:       model.SourceAmazon,
			Title:        "HP 8GB/512GB SSD Intel i5 15.6 Inch Laptop",
			CombinedText: "HP 8GB/512GB SSD Intel i5 15.6 Inch Laptop",
			Brand:        "Hp",
			RAMGB:        &ram,
			StorageGB:    512,
			Processor:    "Intel Core i5",
			GPU:          "Integrated/Other",
			DisplayInch:  &display,
			Price:        &price,
		}},
	}
}

func TestDatasetCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned_laptops.csv")
	if err := WriteDatasetCSV(path, sampleDataset()); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(b), "\n", 2)[0]
	if header != strings.Join(DatasetColumns, ",") {
		t.Errorf("header = %q", header)
	}

	ds, err := ReadDatasetCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	l := ds.Listings[0]
	if l.Brand != "Hp" || *l.RAMGB != 8 || l.StorageGB != 512 || *l.DisplayInch != 15.6 || *l.Price != 45990 || l.Rating != nil {
		t.Errorf("listing = %+v", l)
	}
}

func TestWriteTrainingCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptops_v2_ready.csv")
	if err := WriteTrainingCSV(path, sampleDataset()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Brand,RAM,Storage_GB,Processor,GPU,Display_Inch,Price\nHp,8,512,Intel Core i5,Integrated/Other,15.6,45990\n"
	if string(b) != want {
		t.Errorf("training csv =\n%s\nwant\n%s", b, want)
	}
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptops.sqlite")
	if err := WriteSQLite(path, sampleDataset()); err != nil {
		t.Fatal(err)
	}
	// Rewriting replaces the snapshot instead of appending.
	if err := WriteSQLite(path, sampleDataset()); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	var brand string
	var price float64
	if err := db.QueryRow(`SELECT COUNT(*), MAX(brand), MAX(price) FROM laptops`).Scan(&n, &brand, &price); err != nil {
		t.Fatal(err)
	}
	if n != 1 || brand != "Hp" || price != 45990 {
		t.Errorf("sqlite = %d rows, brand %q, price %g", n, brand, price)
	}
}
