package crawler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"laptopprj/internal/model"
)

// Profile describes how to find listing cards on one site and which selector
// chain resolves each field. Adding a layout variant means adding a RuleSpec,
// never touching the extractor.
type Profile struct {
	Source   model.Source `yaml:"source"`
	URL      string       `yaml:"url"` // fmt template, %d is the page number
	Card     string       `yaml:"card"`
	Title    []RuleSpec   `yaml:"title"`
	Price    []RuleSpec   `yaml:"price"`
	Rating   []RuleSpec   `yaml:"rating"`
	Features []RuleSpec   `yaml:"features"`
}

// PageURL returns the search page URL for a 1-based page number.
func (p Profile) PageURL(page int) string {
	return fmt.Sprintf(p.URL, page)
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultProfiles returns the selectors known to work for each site,
// newest layout first and older class names kept as fallbacks.
func DefaultProfiles() map[model.Source]Profile {
	return map[model.Source]Profile{
		model.SourceAmazon: {
			Source: model.SourceAmazon,
			URL:    "https://www.amazon.in/s?k=laptops&page=%d",
			Card:   `div[data-component-type="s-search-result"]`,
			Title: []RuleSpec{
				{Type: "text", Selector: "h2"},
				{Type: "longest_text", Selector: "span", MinLength: 30},
			},
			Price: []RuleSpec{
				{Type: "price", Selector: "span.a-price", Offscreen: "span.a-offscreen", Whole: "span.a-price-whole"},
			},
			Rating: []RuleSpec{
				{Type: "first_word", Selector: "span.a-icon-alt"},
			},
		},
		model.SourceFlipkart: {
			Source: model.SourceFlipkart,
			URL:    "https://www.flipkart.com/search?q=laptops&page=%d",
			Card:   "div[data-id]",
			Title: []RuleSpec{
				{Type: "text", Selector: "div.RG5Slk"},
				{Type: "text", Selector: "div._4rR01T"},
				{Type: "text", Selector: "a.s1Q9rs"},
				{Type: "longest_text", Selector: "span", MinLength: 30},
			},
			Price: []RuleSpec{
				{Type: "text", Selector: "div.hZ3P6w"},
				{Type: "text", Selector: "div._30jeq3"},
			},
			Rating: []RuleSpec{
				{Type: "text", Selector: "div.MKiFS6"},
				{Type: "text", Selector: "div._3LWZlK"},
			},
			Features: []RuleSpec{
				{Type: "list", Selector: "ul.HwRTzP", Item: "li", Separator: " | "},
				{Type: "list", Selector: "ul._1xgFaf", Item: "li", Separator: " | "},
			},
		},
	}
}

// LoadProfiles starts from DefaultProfiles and replaces every source listed in
// the YAML file at path. An empty path returns the defaults.
func LoadProfiles(path string) (map[model.Source]Profile, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selectors file %s: %w", path, err)
	}

	var f profileFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse selectors file %s: %w", path, err)
	}

	for _, p := range f.Profiles {
		if p.Source == "" || p.Card == "" || len(p.Title) == 0 {
			return nil, fmt.Errorf("selectors file %s: profile %q needs source, card and title rules", path, p.Source)
		}
		if p.URL == "" {
			p.URL = profiles[p.Source].URL
		}
		if _, err := compile(p); err != nil {
			return nil, fmt.Errorf("selectors file %s: profile %q: %w", path, p.Source, err)
		}
		profiles[p.Source] = p
	}
	return profiles, nil
}

type compiledProfile struct {
	source   model.Source
	card     string
	title    []FieldRule
	price    []FieldRule
	rating   []FieldRule
	features []FieldRule
}

func compile(p Profile) (compiledProfile, error) {
	cp := compiledProfile{source: p.Source, card: p.Card}
	var err error
	if cp.title, err = buildChain("title", p.Title); err != nil {
		return cp, err
	}
	if cp.price, err = buildChain("price", p.Price); err != nil {
		return cp, err
	}
	if cp.rating, err = buildChain("rating", p.Rating); err != nil {
		return cp, err
	}
	if cp.features, err = buildChain("features", p.Features); err != nil {
		return cp, err
	}
	return cp, nil
}

func buildChain(field string, specs []RuleSpec) ([]FieldRule, error) {
	chain := make([]FieldRule, 0, len(specs))
	for i, s := range specs {
		r, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", field, i, err)
		}
		chain = append(chain, r)
	}
	return chain, nil
}
