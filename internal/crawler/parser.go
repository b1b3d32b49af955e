package crawler

import (
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"laptopprj/internal/model"
	"laptopprj/internal/observability"
)

func ParseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Extractor applies one source profile to listing cards.
type Extractor struct {
	profile compiledProfile
	now     func() time.Time
}

func NewExtractor(p Profile) (*Extractor, error) {
	cp, err := compile(p)
	if err != nil {
		return nil, err
	}
	return &Extractor{profile: cp, now: time.Now}, nil
}

func (e *Extractor) Source() model.Source { return e.profile.source }

// PageStats counts what happened to the cards of one page.
type PageStats struct {
	Cards   int
	Kept    int
	Dropped int
}

// ExtractCard never fails: missing fields stay nil. ok is false only when no
// title rule matched, in which case the card must be discarded.
func (e *Extractor) ExtractCard(card *goquery.Selection) (model.SourceRecord, bool) {
	title, idx := firstMatch(e.profile.title, card)
	if idx < 0 {
		return model.SourceRecord{}, false
	}

	return model.SourceRecord{
		ID:        uuid.New().String(),
		Source:    e.profile.source,
		Title:     title,
		PriceRaw:  optional(e.profile.price, card),
		RatingRaw: optional(e.profile.rating, card),
		Features:  optional(e.profile.features, card),
		ScrapedAt: e.now(),
	}, true
}

// ExtractDocument extracts every card of a search page. Cards without a title
// are dropped, counted and logged.
func (e *Extractor) ExtractDocument(doc *goquery.Document, pageURL string, page int) ([]model.SourceRecord, PageStats) {
	var stats PageStats
	var records []model.SourceRecord
	source := string(e.profile.source)

	doc.Find(e.profile.card).Each(func(_ int, card *goquery.Selection) {
		stats.Cards++
		rec, ok := e.ExtractCard(card)
		if !ok {
			stats.Dropped++
			return
		}
		rec.PageURL = pageURL
		rec.Page = page
		records = append(records, rec)
	})
	stats.Kept = len(records)

	observability.CardsSeen.WithLabelValues(source).Add(float64(stats.Cards))
	observability.CardsDropped.WithLabelValues(source).Add(float64(stats.Dropped))
	if stats.Dropped > 0 {
		log.Printf("[extractor] %s página %d: %d de %d cards sem título descartados", source, page, stats.Dropped, stats.Cards)
	}
	return records, stats
}

// FieldTrace tells which rule of a chain produced a value; Rule is -1 when none did.
type FieldTrace struct {
	Field string
	Rule  int
	Value string
}

// Explain reports, per field, which rule of the chain matched on card.
func (e *Extractor) Explain(card *goquery.Selection) []FieldTrace {
	chains := []struct {
		name  string
		chain []FieldRule
	}{
		{"title", e.profile.title},
		{"price", e.profile.price},
		{"rating", e.profile.rating},
		{"features", e.profile.features},
	}
	traces := make([]FieldTrace, 0, len(chains))
	for _, c := range chains {
		val, idx := firstMatch(c.chain, card)
		traces = append(traces, FieldTrace{Field: c.name, Rule: idx, Value: val})
	}
	return traces
}

func optional(chain []FieldRule, card *goquery.Selection) *string {
	val, idx := firstMatch(chain, card)
	if idx < 0 {
		return nil
	}
	return &val
}
