package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown wherever a rate or ratio has no solution.
const NotAvailable = "N/A"

// Percent renders a rate to two decimals with a % sign, or N/A.
func Percent(rate *float64) string {
	if rate == nil {
		return NotAvailable
	}
	return round(*rate).StringFixed(2) + "%"
}

// Ratio renders a dimensionless ratio such as BCR, or N/A.
func Ratio(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return round(*v).StringFixed(2)
}

// Money renders an amount to two decimals with thousands separators.
func Money(v float64) string {
	s := round(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return sign + group(whole) + "." + frac
}

// Points renders a signed percentage-point deviation, or N/A.
func Points(delta *float64) string {
	if delta == nil {
		return NotAvailable
	}
	d := round(*delta)
	s := d.StringFixed(2) + " pp"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

// round is half away from zero at two decimals.
func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
