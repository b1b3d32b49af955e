package normalize

import (
	"math"
	"strconv"
	"strings"
)

// priceCleaner removes the rupee glyph (including the mis-decoded form found
// in old Flipkart exports), thousands separators and the decimal point.
// Dropping "." merges paise into the integer part; historical datasets were
// built that way, so it is kept.
var priceCleaner = strings.NewReplacer(
	"â‚¹", "",
	"₹", "",
	",", "",
	".", "",
)

// Price converts a raw price (string, *string, number or nil) to a float.
// Anything it cannot parse becomes nil.
func Price(raw any) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case *string:
		if v == nil {
			return nil
		}
		return parsePrice(*v)
	case string:
		return parsePrice(v)
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func parsePrice(s string) *float64 {
	cleaned := strings.TrimSpace(priceCleaner.Replace(s))
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

// finite rejects NaN and ±Inf, which ParseFloat accepts as words.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
