package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"laptopprj/internal/model"
)

type BrandCount struct {
	Brand string
	Count int
}

// Summary is what the cleaner prints after a run.
type Summary struct {
	Rows         int
	BySource     map[model.Source]int
	DroppedPrice int
	MinPrice     float64
	MaxPrice     float64
	AvgPrice     float64
	TopBrands    []BrandCount
	Head         []model.CanonicalListing
}

// Generate computes the summary. dropped is the number of rows removed for
// missing price, which the dataset itself can no longer tell.
func Generate(ds model.Dataset, dropped, topN, headN int) Summary {
	s := Summary{
		Rows:         len(ds.Listings),
		BySource:     map[model.Source]int{},
		DroppedPrice: dropped,
	}

	brands := map[string]int{}
	var total float64
	priced := 0
	for _, l := range ds.Listings {
		s.BySource[l.Source]++
		brands[l.Brand]++
		if l.Price == nil {
			continue
		}
		p := *l.Price
		if priced == 0 || p < s.MinPrice {
			s.MinPrice = p
		}
		if p > s.MaxPrice {
			s.MaxPrice = p
		}
		total += p
		priced++
	}
	if priced > 0 {
		s.AvgPrice = total / float64(priced)
	}

	for b, c := range brands {
		s.TopBrands = append(s.TopBrands, BrandCount{Brand: b, Count: c})
	}
	sort.Slice(s.TopBrands, func(i, j int) bool {
		if s.TopBrands[i].Count != s.TopBrands[j].Count {
			return s.TopBrands[i].Count > s.TopBrands[j].Count
		}
		return s.TopBrands[i].Brand < s.TopBrands[j].Brand
	})
	if len(s.TopBrands) > topN {
		s.TopBrands = s.TopBrands[:topN]
	}

	if headN > len(ds.Listings) {
		headN = len(ds.Listings)
	}
	s.Head = ds.Listings[:headN]
	return s
}

const titleWidth = 44

func Print(w io.Writer, s Summary) {
	sep := strings.Repeat("═", 78)
	thin := strings.Repeat("─", 76)

	fmt.Fprintf(w, "\n%s\n  LAPTOP DATASET SUMMARY\n%s\n\n", sep, sep)

	fmt.Fprintf(w, "  Linhas no dataset : %d\n", s.Rows)
	for _, src := range model.Sources {
		fmt.Fprintf(w, "    %-15s : %d\n", src, s.BySource[src])
	}
	fmt.Fprintf(w, "  Sem preço (removidas) : %d\n\n", s.DroppedPrice)

	fmt.Fprintf(w, "  Preço\n  %s\n", thin)
	if s.Rows > 0 {
		fmt.Fprintf(w, "  mín ₹%.0f | média ₹%.0f | máx ₹%.0f\n\n", s.MinPrice, s.AvgPrice, s.MaxPrice)
	} else {
		fmt.Fprintf(w, "  sem dados\n\n")
	}

	fmt.Fprintf(w, "  Marcas\n  %s\n", thin)
	for _, b := range s.TopBrands {
		fmt.Fprintf(w, "  %s %d\n", runewidth.FillRight(runewidth.Truncate(b.Brand, 20, "…"), 20), b.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Primeiras linhas\n  %s\n", thin)
	for _, l := range s.Head {
		title := runewidth.FillRight(runewidth.Truncate(l.Title, titleWidth, "…"), titleWidth)
		fmt.Fprintf(w, "  %s %-9s %4s %6dGB %-16s %s\n", title, l.Brand, gb(l.RAMGB), l.StorageGB, l.Processor, price(l.Price))
	}
	fmt.Fprintf(w, "\n%s\n\n", sep)
}

func gb(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%dG", *v)
}

func price(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("₹%.0f", *v)
}
