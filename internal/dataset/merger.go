package dataset

import (
	"log"
	"sort"

	"github.com/google/uuid"

	"laptopprj/internal/model"
	"laptopprj/internal/normalize"
	"laptopprj/internal/observability"
)

// featuresPlaceholder stands in for a missing Flipkart feature list inside
// the combined text. Historical exports carry the same literal.
const featuresPlaceholder = "nan"

// Imputation holds the fixed fill values. RAM has no fixed value: it is the
// mode of the cleaned dataset, RAMFallbackGB is only used when no row has RAM.
type Imputation struct {
	StorageDefaultGB   int
	DisplayDefaultInch float64
	RAMFallbackGB      int
}

func DefaultImputation() Imputation {
	return Imputation{
		StorageDefaultGB:   512,
		DisplayDefaultInch: 15.6,
		RAMFallbackGB:      8,
	}
}

type Merger struct {
	Engine     *normalize.Engine
	Imputation Imputation
}

func NewMerger(imp Imputation) *Merger {
	return &Merger{Engine: normalize.NewEngine(), Imputation: imp}
}

type MergeStats struct {
	Input          int
	DroppedPrice   int
	Output         int
	BySource       map[model.Source]int
	RAMMode        int
	ImputedRAM     int
	ImputedStorage int
	ImputedDisplay int
}

// CombinedText is the only input of attribute extraction: the title for
// Amazon, title plus feature list for Flipkart.
func CombinedText(r model.SourceRecord) string {
	if r.Source != model.SourceFlipkart {
		return r.Title
	}
	features := featuresPlaceholder
	if r.Features != nil {
		features = *r.Features
	}
	return r.Title + " " + features
}

// Merge unions the per-source record sets and returns the cleaned dataset.
// The order of the steps matters: rows without price are dropped before the
// RAM mode is computed, so the mode only reflects rows that survive.
func (m *Merger) Merge(sources ...[]model.SourceRecord) (model.Dataset, MergeStats) {
	stats := MergeStats{BySource: map[model.Source]int{}}
	ds := model.Dataset{RunID: uuid.New().String()}

	for _, records := range sources {
		for _, r := range records {
			stats.Input++

			price := normalize.Price(r.PriceRaw)
			if price == nil {
				stats.DroppedPrice++
				continue
			}

			combined := CombinedText(r)
			title := r.Title
			attrs := m.Engine.Normalize(&combined, &title)

			ds.Listings = append(ds.Listings, model.CanonicalListing{
				ID:           r.ID,
				Source:       r.Source,
				Title:        r.Title,
				CombinedText: combined,
				Brand:        attrs.Brand,
				RAMGB:        attrs.RAMGB,
				StorageGB:    attrs.StorageGB,
				Processor:    attrs.Processor,
				GPU:          attrs.GPU,
				DisplayInch:  attrs.DisplayInch,
				Price:        price,
				Rating:       r.RatingRaw,
			})
			stats.BySource[r.Source]++
		}
	}

	if stats.DroppedPrice > 0 {
		observability.RowsDroppedPrice.Add(float64(stats.DroppedPrice))
		log.Printf("[merger] %d de %d registros sem preço válido removidos", stats.DroppedPrice, stats.Input)
	}

	m.impute(ds.Listings, &stats)
	stats.Output = len(ds.Listings)

	log.Printf("[merger] Dataset final: %d linhas (Amazon %d, Flipkart %d) | moda RAM %dGB | imputados RAM %d, storage %d, tela %d",
		stats.Output, stats.BySource[model.SourceAmazon], stats.BySource[model.SourceFlipkart],
		stats.RAMMode, stats.ImputedRAM, stats.ImputedStorage, stats.ImputedDisplay)
	return ds, stats
}

func (m *Merger) impute(listings []model.CanonicalListing, stats *MergeStats) {
	ramFill, ok := RAMMode(listings)
	if !ok {
		ramFill = m.Imputation.RAMFallbackGB
		if len(listings) > 0 {
			log.Printf("[merger] nenhuma linha com RAM, usando %dGB", ramFill)
		}
	}
	stats.RAMMode = ramFill

	for i := range listings {
		l := &listings[i]
		if l.RAMGB == nil {
			v := ramFill
			l.RAMGB = &v
			stats.ImputedRAM++
		}
		if l.StorageGB == 0 {
			l.StorageGB = m.Imputation.StorageDefaultGB
			stats.ImputedStorage++
		}
		if l.DisplayInch == nil {
			v := m.Imputation.DisplayDefaultInch
			l.DisplayInch = &v
			stats.ImputedDisplay++
		}
	}

	observability.ValuesImputed.WithLabelValues("ram").Add(float64(stats.ImputedRAM))
	observability.ValuesImputed.WithLabelValues("storage").Add(float64(stats.ImputedStorage))
	observability.ValuesImputed.WithLabelValues("display").Add(float64(stats.ImputedDisplay))
}

// RAMMode returns the most frequent RAM value among listings that have one.
// Ties go to the smallest value. ok is false when no listing has RAM.
func RAMMode(listings []model.CanonicalListing) (int, bool) {
	counts := map[int]int{}
	for _, l := range listings {
		if l.RAMGB != nil {
			counts[*l.RAMGB]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// RecomputeGPU re-derives the GPU column from the stored combined text,
// for datasets cleaned before the GPU table changed.
func (m *Merger) RecomputeGPU(ds *model.Dataset) int {
	changed := 0
	for i := range ds.Listings {
		l := &ds.Listings[i]
		var text *string
		if l.CombinedText != "" {
			text = &l.CombinedText
		}
		gpu := m.Engine.GPU.Resolve(text)
		if gpu != l.GPU {
			l.GPU = gpu
			changed++
		}
	}
	return changed
}
