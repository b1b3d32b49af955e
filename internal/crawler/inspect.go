package crawler

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// candidateMinLen mirrors the title fallback threshold.
const candidateMinLen = 30

// CardReport is what cmd/inspect prints for one card of a dumped page.
type CardReport struct {
	Titles []string
	Prices []string
	Traces []FieldTrace
}

// PageReport is an offline view of how the selector chains behave on a page.
type PageReport struct {
	Cards   int
	Details []CardReport
}

// Inspect counts the cards of doc and, for the first maxCards of them, lists
// leaf texts that look like titles (longer than 30 characters) or prices
// (carrying a rupee sign) next to the rule each chain picked.
func (e *Extractor) Inspect(doc *goquery.Document, maxCards int) PageReport {
	var rep PageReport
	doc.Find(e.profile.card).Each(func(i int, card *goquery.Selection) {
		rep.Cards++
		if i >= maxCards {
			return
		}
		var cr CardReport
		seen := map[string]bool{}
		card.Find("*").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			text := strings.TrimSpace(s.Text())
			if text == "" || seen[text] {
				return
			}
			seen[text] = true
			if utf8.RuneCountInString(text) > candidateMinLen {
				cr.Titles = append(cr.Titles, text)
			}
			if strings.Contains(text, "₹") {
				cr.Prices = append(cr.Prices, text)
			}
		})
		cr.Traces = e.Explain(card)
		rep.Details = append(rep.Details, cr)
	})
	return rep
}
