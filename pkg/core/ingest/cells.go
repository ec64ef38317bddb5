package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseYear reads a year cell. It accepts a bare integer ("2026") or a
// label carrying a four-digit year ("FY 2026", "Year ended 2026").
// Rows whose year cell has neither, such as totals, report ok == false.
func ParseYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if y, err := strconv.Atoi(raw); err == nil {
		return y, true
	}
	if m := yearPattern.FindAllString(raw, -1); len(m) > 0 {
		y, _ := strconv.Atoi(m[len(m)-1])
		return y, true
	}
	return 0, false
}

// ParseAmount parses a money cell.
//
//	"(1,234)"    → -1234 (parentheses = negative)
//	"$1,234.56"  → 1234.56
//	"—", "-", "" → 0 (blank)
//	"1 234"      → 1234
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if isBlank(s) {
		return 0, nil
	}

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	if negative {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = amountNoise.Replace(s)
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", strings.TrimSpace(raw))
	}
	if negative && v > 0 {
		v = -v
	}
	return v, nil
}

var amountNoise = strings.NewReplacer(
	",", "",
	" ", "",
	"\u00a0", "",
	"$", "",
	"€", "",
	"£", "",
	"₹", "",
)

func isBlank(s string) bool {
	switch strings.ToUpper(s) {
	case "", "-", "—", "–", "N/A", "NA", "NIL":
		return true
	}
	return false
}

// Scale is the unit multiplier declared in a table caption.
type Scale float64

const (
	ScaleUnits     Scale = 1
	ScaleThousands Scale = 1e3
	ScaleMillions  Scale = 1e6
)

// DetectScale reads "(in thousands)" style hints from caption text.
func DetectScale(text string) Scale {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "million"):
		return ScaleMillions
	case strings.Contains(lower, "thousand") || strings.Contains(lower, "'000"):
		return ScaleThousands
	}
	return ScaleUnits
}
