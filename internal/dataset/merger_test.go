package dataset

import (
	"testing"

	"laptopprj/internal/crawler"
	"laptopprj/internal/model"
	"laptopprj/internal/normalize"
)

func strp(s string) *string { return &s }

func amazon(title string, price *string) model.SourceRecord {
	return model.SourceRecord{ID: title, Source: model.SourceAmazon, Title: title, PriceRaw: price}
}

func flipkart(title string, features, price *string) model.SourceRecord {
	return model.SourceRecord{ID: title, Source: model.SourceFlipkart, Title: title, Features: features, PriceRaw: price}
}

func TestCombinedText(t *testing.T) {
	tests := []struct {
		rec  model.SourceRecord
		want string
	}{
		{amazon("HP 8GB Laptop", nil), "HP 8GB Laptop"},
		{flipkart("ASUS Vivobook", strp("8 GB RAM | 512 GB SSD"), nil), "ASUS Vivobook 8 GB RAM | 512 GB SSD"},
		{flipkart("ASUS Vivobook", nil, nil), "ASUS Vivobook nan"},
	}
	for _, tt := range tests {
		if got := CombinedText(tt.rec); got != tt.want {
			t.Errorf("CombinedText(%s) = %q; want %q", tt.rec.Title, got, tt.want)
		}
	}
}

func TestMergeEndToEndAmazonRecord(t *testing.T) {
	m := NewMerger(DefaultImputation())
	ds, stats := m.Merge([]model.SourceRecord{
		amazon("HP 8GB/512GB SSD Intel i5 15.6 Inch Laptop", strp("₹45,990")),
	})

	if stats.Output != 1 || len(ds.Listings) != 1 {
		t.Fatalf("output = %d", stats.Output)
	}
	l := ds.Listings[0]
	if l.Brand != "Hp" || *l.RAMGB != 8 || l.StorageGB != 512 || l.Processor != "Intel Core i5" || *l.DisplayInch != 15.6 || *l.Price != 45990 {
		t.Errorf("listing = brand %q ram %d storage %d cpu %q display %g price %g",
			l.Brand, *l.RAMGB, l.StorageGB, l.Processor, *l.DisplayInch, *l.Price)
	}
	if l.Source != model.SourceAmazon || l.CombinedText != l.Title {
		t.Errorf("source/combined = %s / %q", l.Source, l.CombinedText)
	}
	if ds.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestMergeDropsRowsWithoutPrice(t *testing.T) {
	m := NewMerger(DefaultImputation())
	amazonRecs := []model.SourceRecord{
		amazon("Dell 8GB", strp("₹40,000")),
		amazon("Dell 16GB", nil),
		amazon("Dell 4GB", strp("see options")),
	}
	flipkartRecs := []model.SourceRecord{
		flipkart("Acer", strp("8 GB RAM"), strp("₹30,990")),
		flipkart("Acer Nitro", strp("16 GB RAM"), strp("")),
	}

	ds, stats := m.Merge(amazonRecs, flipkartRecs)

	if stats.Input != 5 || stats.DroppedPrice != 3 || stats.Output != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Output != stats.Input-stats.DroppedPrice {
		t.Error("output must equal input minus dropped-price rows")
	}
	for _, l := range ds.Listings {
		if l.Price == nil {
			t.Errorf("%s kept without price", l.Title)
		}
	}
	if ds.Listings[0].Source != model.SourceAmazon || ds.Listings[1].Source != model.SourceFlipkart {
		t.Error("union must keep source order")
	}
	if stats.BySource[model.SourceAmazon] != 1 || stats.BySource[model.SourceFlipkart] != 1 {
		t.Errorf("by source = %v", stats.BySource)
	}
}

// The RAM fill value is the mode of the rows that survive the price drop.
// Here dropped rows are mostly 8GB, surviving rows mostly 16GB.
func TestMergeRAMModeComputedAfterPriceDrop(t *testing.T) {
	m := NewMerger(DefaultImputation())
	recs := []model.SourceRecord{
		amazon("Lenovo 16GB SSD", strp("₹70,000")),
		amazon("Lenovo 16GB Legion", strp("₹90,000")),
		amazon("Lenovo 8GB", strp("₹35,000")),
		amazon("Lenovo Chromebook", strp("₹20,000")),
		amazon("Asus 8GB", nil),
		amazon("Asus 8GB Vivobook", nil),
		amazon("Asus 8GB Zenbook", strp("n/a")),
	}

	ds, stats := m.Merge(recs)

	if stats.RAMMode != 16 {
		t.Fatalf("RAM mode = %d, want 16 (computed after drop)", stats.RAMMode)
	}
	chromebook := ds.Listings[3]
	if chromebook.RAMGB == nil || *chromebook.RAMGB != 16 {
		t.Errorf("imputed RAM = %v, want 16", chromebook.RAMGB)
	}
	if stats.ImputedRAM != 1 {
		t.Errorf("ImputedRAM = %d", stats.ImputedRAM)
	}
}

func TestMergeImputesFixedDefaults(t *testing.T) {
	m := NewMerger(DefaultImputation())
	ds, stats := m.Merge([]model.SourceRecord{
		amazon("Acer Aspire 7 RTX 3050", strp("₹55,000")),
		amazon("Acer Swift 1 TB SSD 14 inch", strp("₹75,000")),
	})

	first, second := ds.Listings[0], ds.Listings[1]
	if first.StorageGB != 512 || *first.DisplayInch != 15.6 {
		t.Errorf("defaults = storage %d display %g", first.StorageGB, *first.DisplayInch)
	}
	if second.StorageGB != 1024 || *second.DisplayInch != 14 {
		t.Errorf("extracted = storage %d display %g", second.StorageGB, *second.DisplayInch)
	}
	// No row has RAM: the fallback applies.
	if *first.RAMGB != 8 || *second.RAMGB != 8 {
		t.Errorf("RAM fallback = %d/%d", *first.RAMGB, *second.RAMGB)
	}
	if stats.ImputedStorage != 1 || stats.ImputedDisplay != 1 || stats.ImputedRAM != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if first.GPU != "NVIDIA RTX 3050" {
		t.Errorf("GPU = %q", first.GPU)
	}
}

func TestMergeInvariantNoNullsAfterImputation(t *testing.T) {
	m := NewMerger(Imputation{StorageDefaultGB: 256, DisplayDefaultInch: 14, RAMFallbackGB: 4})
	ds, _ := m.Merge(
		[]model.SourceRecord{amazon("Generic laptop", strp("₹10,000")), amazon("Other 12GB", strp("₹12,000"))},
		[]model.SourceRecord{flipkart("Thing", nil, strp("₹9,999"))},
	)
	for _, l := range ds.Listings {
		if l.Price == nil || l.RAMGB == nil || l.DisplayInch == nil || l.StorageGB == 0 {
			t.Errorf("%s still has a missing value", l.Title)
		}
	}
	if ds.Listings[0].StorageGB != 256 || *ds.Listings[0].DisplayInch != 14 || *ds.Listings[0].RAMGB != 12 {
		t.Errorf("configured defaults not applied: %+v", ds.Listings[0])
	}
}

func TestRAMModeTieGoesToSmallest(t *testing.T) {
	eight, sixteen := 8, 16
	listings := []model.CanonicalListing{{RAMGB: &sixteen}, {RAMGB: &eight}, {RAMGB: &sixteen}, {RAMGB: &eight}, {}}
	mode, ok := RAMMode(listings)
	if !ok || mode != 8 {
		t.Errorf("mode = %d, %v; want 8", mode, ok)
	}
	if _, ok := RAMMode(nil); ok {
		t.Error("empty input should report no mode")
	}
}

func TestRecomputeGPU(t *testing.T) {
	m := NewMerger(DefaultImputation())
	ds := model.Dataset{Listings: []model.CanonicalListing{
		{CombinedText: "MSI RTX 4070", GPU: "Integrated/Other"},
		{CombinedText: "Basic laptop", GPU: normalize.GPUUnmatched},
		{CombinedText: "", GPU: "Other"},
	}}

	changed := m.RecomputeGPU(&ds)

	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	if ds.Listings[0].GPU != "NVIDIA RTX 4070" || ds.Listings[2].GPU != normalize.GPUMissing {
		t.Errorf("GPUs = %q / %q", ds.Listings[0].GPU, ds.Listings[2].GPU)
	}
}

func TestMergeAmazonCardWithoutOffscreenPrice(t *testing.T) {
	doc, err := crawler.ParseDocument(`<html><body>
<div data-component-type="s-search-result">
  <h2>Lenovo IdeaPad Slim 3 AMD Ryzen 5 16GB 512GB SSD 39.6 cm</h2>
  <span class="a-price"><span class="a-price-whole">52,490.</span><span class="a-price-fraction">00</span></span>
</div>
</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	e, err := crawler.NewExtractor(crawler.DefaultProfiles()[model.SourceAmazon])
	if err != nil {
		t.Fatal(err)
	}
	records, _ := e.ExtractDocument(doc, "", 1)

	ds, _ := NewMerger(DefaultImputation()).Merge(records)
	if len(ds.Listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(ds.Listings))
	}
	if p := ds.Listings[0].Price; p == nil || *p != 52490 {
		t.Errorf("price = %v, want 52490", showPrice(p))
	}
}

func showPrice(p *float64) any {
	if p == nil {
		return "<nil>"
	}
	return *p
}
