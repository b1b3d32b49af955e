package normalize

import "strconv"

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func show(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return strconv.Quote(*s)
}

func showInt(v *int) string {
	if v == nil {
		return "<nil>"
	}
	return strconv.Itoa(*v)
}

func showFloat(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
