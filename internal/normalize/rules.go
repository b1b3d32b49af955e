package normalize

import "strings"

// Matcher reports whether a case-folded text belongs to a rule.
type Matcher func(text string) bool

// Rule maps a match to one canonical value.
type Rule struct {
	Match Matcher
	Value string
}

// RuleSet is an ordered rule table for one categorical field. Rules are
// tested top to bottom and the first match wins, so more specific tokens must
// come before tokens they contain or are contained in.
type RuleSet struct {
	Field string
	Rules []Rule
	// Unmatched is returned when text is present but no rule matches.
	Unmatched string
	// Missing is returned when there is no text at all.
	Missing string
}

// Resolve runs the table over text. text is case-folded before matching.
func (rs RuleSet) Resolve(text *string) string {
	if text == nil {
		return rs.Missing
	}
	lower := strings.ToLower(*text)
	for _, r := range rs.Rules {
		if r.Match(lower) {
			return r.Value
		}
	}
	return rs.Unmatched
}

// contains matches when any of the tokens is a substring of the text.
func contains(tokens ...string) Matcher {
	return func(text string) bool {
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				return true
			}
		}
		return false
	}
}

func rule(value string, tokens ...string) Rule {
	return Rule{Match: contains(tokens...), Value: value}
}

const (
	ProcessorOther = "Other"

	GPUUnmatched = "Integrated/Other"
	// GPUMissing differs from GPUUnmatched on purpose: historical exports used
	// a separate literal when the listing had no text.
	GPUMissing = "Internal/Other"

	BrandOther = "Other"
)

// ProcessorRules: Intel tiers first (i9 down to i3), then Apple M-series, then
// Ryzen from 9 down to 3, then the low-end Intel families.
var ProcessorRules = RuleSet{
	Field: "processor",
	Rules: []Rule{
		rule("Intel Core i9", "i9"),
		rule("Intel Core i7", "i7"),
		rule("Intel Core i5", "i5"),
		rule("Intel Core i3", "i3"),
		rule("Apple M1", "m1"),
		rule("Apple M2", "m2"),
		rule("Apple M3", "m3"),
		rule("AMD Ryzen 9", "ryzen 9"),
		rule("AMD Ryzen 7", "ryzen 7"),
		rule("AMD Ryzen 5", "ryzen 5"),
		rule("AMD Ryzen 3", "ryzen 3"),
		rule("Intel Celeron", "celeron"),
		rule("Intel Pentium", "pentium"),
	},
	Unmatched: ProcessorOther,
	Missing:   ProcessorOther,
}

// GPURules: every explicit NVIDIA tier is tested before the vendor catch-alls.
// "m1"/"m2"/"m3" is the last resort since those tokens show up in unrelated text.
var GPURules = RuleSet{
	Field: "gpu",
	Rules: []Rule{
		rule("NVIDIA RTX 4090", "rtx 4090"),
		rule("NVIDIA RTX 4080", "rtx 4080"),
		rule("NVIDIA RTX 4070", "rtx 4070"),
		rule("NVIDIA RTX 4060", "rtx 4060"),
		rule("NVIDIA RTX 4050", "rtx 4050"),
		rule("NVIDIA RTX 3080", "rtx 3080"),
		rule("NVIDIA RTX 3070", "rtx 3070"),
		rule("NVIDIA RTX 3060", "rtx 3060"),
		rule("NVIDIA RTX 3050", "rtx 3050"),
		rule("NVIDIA RTX 2050", "rtx 2050"),
		rule("NVIDIA GTX 1650", "gtx 1650"),
		rule("Intel Arc", "intel arc"),
		rule("Intel Iris Xe", "iris xe", "intel iris"),
		rule("Intel UHD", "uhd graphics", "intel uhd"),
		rule("AMD Radeon", "radeon"),
		rule("Apple Silicon GPU", "m1", "m2", "m3"),
	},
	Unmatched: GPUUnmatched,
	Missing:   GPUMissing,
}
