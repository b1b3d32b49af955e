package crawler

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnknownRule is returned when a profile names a rule type that does not exist.
var ErrUnknownRule = errors.New("unknown selector rule type")

// FieldRule pulls one field out of a listing card. ok is false when the rule
// found nothing usable, which lets the next rule in the chain try.
type FieldRule interface {
	Extract(card *goquery.Selection) (value string, ok bool)
}

// RuleSpec is the configurable form of a FieldRule.
type RuleSpec struct {
	Type      string `yaml:"type"`
	Selector  string `yaml:"selector"`
	Attr      string `yaml:"attr,omitempty"`
	Item      string `yaml:"item,omitempty"`
	Separator string `yaml:"separator,omitempty"`
	Offscreen string `yaml:"offscreen,omitempty"`
	Whole     string `yaml:"whole,omitempty"`
	Fraction  string `yaml:"fraction,omitempty"`
	MinLength int    `yaml:"min_length,omitempty"`
}

// Build turns a RuleSpec into a rule.
func (s RuleSpec) Build() (FieldRule, error) {
	if s.Selector == "" {
		return nil, fmt.Errorf("rule %q: selector is required", s.Type)
	}
	switch s.Type {
	case "text":
		return textRule{selector: s.Selector}, nil
	case "attr":
		return attrRule{selector: s.Selector, attr: s.Attr}, nil
	case "first_word":
		return firstWordRule{selector: s.Selector}, nil
	case "list":
		sep := s.Separator
		if sep == "" {
			sep = " | "
		}
		item := s.Item
		if item == "" {
			item = "li"
		}
		return listRule{selector: s.Selector, item: item, sep: sep}, nil
	case "price":
		return priceRule{container: s.Selector, offscreen: s.Offscreen, whole: s.Whole, fraction: s.Fraction}, nil
	case "longest_text":
		return longestTextRule{selector: s.Selector, minLen: s.MinLength}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, s.Type)
	}
}

// textRule takes the trimmed text of the first matching element.
type textRule struct {
	selector string
}

func (r textRule) Extract(card *goquery.Selection) (string, bool) {
	sel := card.Find(r.selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return text, text != ""
}

type attrRule struct {
	selector string
	attr     string
}

func (r attrRule) Extract(card *goquery.Selection) (string, bool) {
	val, exists := card.Find(r.selector).First().Attr(r.attr)
	val = strings.TrimSpace(val)
	return val, exists && val != ""
}

// firstWordRule keeps the first space separated token, e.g. "4.2" from
// "4.2 out of 5 stars".
type firstWordRule struct {
	selector string
}

func (r firstWordRule) Extract(card *goquery.Selection) (string, bool) {
	text, ok := textRule(r).Extract(card)
	if !ok {
		return "", false
	}
	return strings.Fields(text)[0], true
}

// listRule joins the items of a bullet list.
type listRule struct {
	selector string
	item     string
	sep      string
}

func (r listRule) Extract(card *goquery.Selection) (string, bool) {
	list := card.Find(r.selector).First()
	if list.Length() == 0 {
		return "", false
	}
	var items []string
	list.Find(r.item).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			items = append(items, text)
		}
	})
	if len(items) == 0 {
		return "", false
	}
	return strings.Join(items, r.sep), true
}

// priceRule reads a price block that may carry a consolidated hidden string
// (offscreen) or only the visible whole part. The fraction is appended only
// when a fraction selector is configured; the canonicalizer drops the ".",
// so a composed "52,490.00" would read as 5249000.
type priceRule struct {
	container string
	offscreen string
	whole     string
	fraction  string
}

func (r priceRule) Extract(card *goquery.Selection) (string, bool) {
	block := card.Find(r.container).First()
	if block.Length() == 0 {
		return "", false
	}

	if r.offscreen != "" {
		if text := strings.TrimSpace(block.Find(r.offscreen).First().Text()); text != "" {
			return text, true
		}
	}

	if r.whole != "" {
		whole := strings.TrimSpace(block.Find(r.whole).First().Text())
		whole = strings.TrimRight(whole, ".,")
		if whole != "" {
			if r.fraction != "" {
				if frac := strings.TrimSpace(block.Find(r.fraction).First().Text()); frac != "" {
					return whole + "." + frac, true
				}
			}
			return whole, true
		}
	}

	text := strings.TrimSpace(block.Text())
	return text, text != ""
}

// longestTextRule is the last resort for titles: among the matching elements
// it keeps the longest text that is longer than minLen characters.
type longestTextRule struct {
	selector string
	minLen   int
}

func (r longestTextRule) Extract(card *goquery.Selection) (string, bool) {
	best := ""
	bestLen := r.minLen
	card.Find(r.selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if n := utf8.RuneCountInString(text); n > bestLen {
			best, bestLen = text, n
		}
	})
	return best, best != ""
}

// firstMatch runs a chain and reports the winning value and its index, or -1.
func firstMatch(chain []FieldRule, card *goquery.Selection) (string, int) {
	for i, rule := range chain {
		if val, ok := rule.Extract(card); ok {
			return val, i
		}
	}
	return "", -1
}
