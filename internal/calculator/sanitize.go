package calculator

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SanitizeQty keeps digits only. Everything else the operator typed is
// silently dropped, mirroring the input mask on the quantity columns.
func SanitizeQty(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeForecast keeps digits and at most one decimal point. When the
// operator pastes text with several points, everything from the last extra
// point on is cut, matching the F/C 2D input mask.
func SanitizeForecast(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	for strings.Count(s, ".") > 1 {
		s = s[:strings.LastIndex(s, ".")]
	}
	return s
}

// SanitizeBoxList normalizes an ACT /BOX entry: digits and commas only, no
// leading comma, comma runs collapsed to one, trailing commas trimmed.
// ",10,,20" becomes "10,20".
func SanitizeBoxList(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	for strings.Contains(s, ",,") {
		s = strings.ReplaceAll(s, ",,", ",")
	}
	s = strings.TrimPrefix(s, ",")
	s = strings.TrimSuffix(s, ",")
	return s
}

// ParseQty parses a sanitized quantity cell. Empty text is 0.
func ParseQty(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseForecast parses a sanitized F/C 2D cell through decimal so entries
// like "12.50" survive normalization exactly. ok is false for empty or
// unparseable text; callers then feed the NaN sentinel path.
func ParseForecast(s string) (float64, bool) {
	if s == "" || s == "." {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
