package affordability

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// nonFinite spells out ±Inf and NaN, which decimal refuses to hold.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	return "", false
}

func fixed(v float64, places int32) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func (p Policy) money(v float64) string {
	return p.CurrencySymbol + " " + fixed(v, 2)
}

// moneyGrouped prints whole amounts with thousands separators ("R2,500") and
// keeps cents only when there are any ("R1,234.50").
func (p Policy) moneyGrouped(v float64) string {
	if s, ok := nonFinite(v); ok {
		return p.CurrencySymbol + s
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	out := p.CurrencySymbol + sign + groupThousands(whole.String())
	if frac := d.Sub(whole); !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func percent(v float64) string {
	return fixed(v, 1) + "%"
}

// number prints a threshold without trailing zeros ("40", "12.5").
func number(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).String()
}

func years(v float64) string {
	return fixed(v, 1) + " yrs"
}

func months(n int) string {
	return strconv.Itoa(n) + " months"
}
