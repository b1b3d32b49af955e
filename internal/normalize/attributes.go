package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reRAM     = regexp.MustCompile(`(?i)(\d+)\s*GB`)
	reStorage = regexp.MustCompile(`(?i)(\d+)\s*(GB|TB)\s*(SSD|HDD)`)
	reDisplay = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(inch|cm)`)
)

const cmPerInch = 2.54

// Attributes are the fields derived from one listing's text.
type Attributes struct {
	Brand       string
	RAMGB       *int
	StorageGB   int
	Processor   string
	GPU         string
	DisplayInch *float64
}

// Engine applies the per-field extractors. The rule tables are fields so a
// caller can swap one without touching the others.
type Engine struct {
	Processor RuleSet
	GPU       RuleSet
}

func NewEngine() *Engine {
	return &Engine{
		Processor: ProcessorRules,
		GPU:       GPURules,
	}
}

// Normalize derives every attribute. Brand comes from the title alone, the
// rest from the combined text. Nil inputs produce each field's default.
func (e *Engine) Normalize(combined, title *string) Attributes {
	return Attributes{
		Brand:       Brand(title),
		RAMGB:       RAM(combined),
		StorageGB:   Storage(combined),
		Processor:   e.Processor.Resolve(combined),
		GPU:         e.GPU.Resolve(combined),
		DisplayInch: Display(combined),
	}
}

// RAM returns the integer right before the first "GB" token, or nil.
func RAM(text *string) *int {
	if text == nil {
		return nil
	}
	m := reRAM.FindStringSubmatch(*text)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// Storage needs a size, a GB/TB unit and an SSD/HDD medium in sequence.
// TB is converted to GB with a factor of 1024. No match gives 0.
func Storage(text *string) int {
	if text == nil {
		return 0
	}
	m := reStorage.FindStringSubmatch(*text)
	if len(m) < 4 {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if strings.EqualFold(m[2], "TB") {
		v *= 1024
	}
	return v
}

// Display returns the screen size in inches rounded to one decimal.
// Centimetre values are divided by 2.54 first.
func Display(text *string) *float64 {
	if text == nil {
		return nil
	}
	m := reDisplay.FindStringSubmatch(*text)
	if len(m) < 3 {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if strings.EqualFold(m[2], "cm") {
		v = v / cmPerInch
	}
	v = math.Round(v*10) / 10
	return &v
}

func Processor(text *string) string { return ProcessorRules.Resolve(text) }

func GPU(text *string) string { return GPURules.Resolve(text) }

// Brand is the first word of the title in title case ("HP" -> "Hp").
func Brand(title *string) string {
	if title == nil {
		return BrandOther
	}
	fields := strings.Fields(*title)
	if len(fields) == 0 {
		return BrandOther
	}
	return titleCase(fields[0])
}

// titleCase upper-cases a letter that follows a non-letter and lower-cases the
// rest, so "HP-15s" becomes "Hp-15S".
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}
