package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"laptopprj/internal/model"
)

// ErrMissingColumn is returned when an export lacks a column the pipeline
// cannot do without. Callers treat the whole source as empty.
var ErrMissingColumn = errors.New("missing required column")

// DatasetColumns is the header of the canonical dataset export.
var DatasetColumns = []string{
	"source", "title", "combined_text", "brand", "ram_gb", "storage_gb",
	"processor", "gpu", "display_inch", "price", "rating",
}

// TrainingColumns is the exact input contract of the price model.
var TrainingColumns = []string{"Brand", "RAM", "Storage_GB", "Processor", "GPU", "Display_Inch", "Price"}

// RawColumns returns the export columns of one source.
func RawColumns(source model.Source) []string {
	if source == model.SourceFlipkart {
		return []string{"Title", "Price", "Rating", "Features"}
	}
	return []string{"Title", "Price", "Rating"}
}

func requiredRawColumns(source model.Source) []string {
	if source == model.SourceFlipkart {
		return []string{"Title", "Price", "Features"}
	}
	return []string{"Title", "Price"}
}

// WriteRawCSV writes one source's records with the historical column names.
// Nil fields become empty cells.
func WriteRawCSV(path string, source model.Source, records []model.SourceRecord) error {
	return writeCSV(path, RawColumns(source), func(w *csv.Writer) error {
		for _, r := range records {
			row := []string{r.Title, cell(r.PriceRaw), cell(r.RatingRaw)}
			if source == model.SourceFlipkart {
				row = append(row, cell(r.Features))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadRawCSV loads a raw export. Rows without a title are skipped and the
// count is logged. Empty cells are read back as nil.
func ReadRawCSV(path string, source model.Source) ([]model.SourceRecord, error) {
	records, skipped, err := readRawCSV(path, source)
	if skipped > 0 {
		log.Printf("[storage] %s: %d linhas sem título descartadas de %s", source, skipped, path)
	}
	return records, err
}

func readRawCSV(path string, source model.Source) ([]model.SourceRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("csv: read header %s: %w", path, err)
	}
	idx := indexColumns(header)
	for _, col := range requiredRawColumns(source) {
		if _, ok := idx[col]; !ok {
			return nil, 0, fmt.Errorf("%w: %s in %s", ErrMissingColumn, col, path)
		}
	}

	var records []model.SourceRecord
	skipped := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, skipped, fmt.Errorf("csv: read %s: %w", path, err)
		}
		title := get(row, idx, "Title")
		if title == nil || strings.TrimSpace(*title) == "" {
			skipped++
			continue
		}
		records = append(records, model.SourceRecord{
			ID:        uuid.New().String(),
			Source:    source,
			Title:     *title,
			PriceRaw:  get(row, idx, "Price"),
			RatingRaw: get(row, idx, "Rating"),
			Features:  get(row, idx, "Features"),
		})
	}
	return records, skipped, nil
}

// WriteDatasetCSV writes the canonical dataset.
func WriteDatasetCSV(path string, ds model.Dataset) error {
	return writeCSV(path, DatasetColumns, func(w *csv.Writer) error {
		for _, l := range ds.Listings {
			row := []string{
				string(l.Source),
				l.Title,
				l.CombinedText,
				l.Brand,
				formatIntPtr(l.RAMGB),
				strconv.Itoa(l.StorageGB),
				l.Processor,
				l.GPU,
				formatFloatPtr(l.DisplayInch),
				formatFloatPtr(l.Price),
				cell(l.Rating),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadDatasetCSV loads a dataset written by WriteDatasetCSV.
func ReadDatasetCSV(path string) (model.Dataset, error) {
	var ds model.Dataset

	f, err := os.Open(path)
	if err != nil {
		return ds, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return ds, fmt.Errorf("csv: read header %s: %w", path, err)
	}
	idx := indexColumns(header)
	for _, col := range DatasetColumns {
		if _, ok := idx[col]; !ok && col != "rating" {
			return ds, fmt.Errorf("%w: %s in %s", ErrMissingColumn, col, path)
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ds, fmt.Errorf("csv: read %s: %w", path, err)
		}
		l := model.CanonicalListing{
			Source:       model.Source(value(row, idx, "source")),
			Title:        value(row, idx, "title"),
			CombinedText: value(row, idx, "combined_text"),
			Brand:        value(row, idx, "brand"),
			Processor:    value(row, idx, "processor"),
			GPU:          value(row, idx, "gpu"),
			Rating:       get(row, idx, "rating"),
		}
		if v, err := strconv.Atoi(value(row, idx, "ram_gb")); err == nil {
			l.RAMGB = &v
		}
		if v, err := strconv.Atoi(value(row, idx, "storage_gb")); err == nil {
			l.StorageGB = v
		}
		if v, err := strconv.ParseFloat(value(row, idx, "display_inch"), 64); err == nil {
			l.DisplayInch = &v
		}
		if v, err := strconv.ParseFloat(value(row, idx, "price"), 64); err == nil {
			l.Price = &v
		}
		ds.Listings = append(ds.Listings, l)
	}
	return ds, nil
}

// WriteTrainingCSV writes the six model features plus the price target.
func WriteTrainingCSV(path string, ds model.Dataset) error {
	return writeCSV(path, TrainingColumns, func(w *csv.Writer) error {
		for _, l := range ds.Listings {
			f := l.Features()
			row := []string{
				f.Brand,
				strconv.Itoa(f.RAM),
				strconv.Itoa(f.StorageGB),
				f.Processor,
				f.GPU,
				strconv.FormatFloat(f.DisplayInch, 'f', -1, 64),
				strconv.FormatFloat(f.Price, 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, rows func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := rows(w); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}
	return f.Close()
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

// get returns nil for an absent column or an empty cell.
func get(row []string, idx map[string]int, col string) *string {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == "" {
		return nil
	}
	v := row[i]
	return &v
}

func value(row []string, idx map[string]int, col string) string {
	if v := get(row, idx, col); v != nil {
		return *v
	}
	return ""
}

func cell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
