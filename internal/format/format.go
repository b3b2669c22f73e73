// Package format renders amounts and percents the way the dashboard displays them.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"pairScope/internal/model"
)

const (
	compactThreshold = 500_000_000
	tinyThreshold    = 0.0001
)

var units = []struct {
	size   float64
	suffix string
}{
	{1e12, "t"},
	{1e9, "b"},
	{1e6, "m"},
	{1e3, "k"},
}

// ToK abbreviates n with a k/m/b/t suffix and at most two decimals, trailing zeros dropped.
func ToK(n float64) string {
	if !finite(n) {
		return "0"
	}
	abs := math.Abs(n)
	for i := len(units) - 1; i >= 0; i-- {
		if i > 0 && abs >= units[i-1].size {
			continue
		}
		if abs < units[i].size {
			break
		}
		scaled := decimal.NewFromFloat(n).Div(decimal.NewFromFloat(units[i].size)).Round(2)
		if scaled.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) && i > 0 {
			scaled = decimal.NewFromFloat(n).Div(decimal.NewFromFloat(units[i-1].size)).Round(2)
			return scaled.String() + units[i-1].suffix
		}
		return scaled.String() + units[i].suffix
	}
	return decimal.NewFromFloat(n).Round(2).String()
}

// Amount formats n using the display ladder: NaN, compact above 5e8, zero, tiny,
// grouped integers above 1000, then 2 or 4 decimals.
func Amount(n float64, usd bool) string {
	prefix := ""
	if usd {
		prefix = "$"
	}
	if !finite(n) {
		return prefix + "0"
	}
	if n > compactThreshold {
		return prefix + ToK(math.Round(n))
	}
	if n == 0 {
		return prefix + "0"
	}
	if n > 0 && n < tinyThreshold {
		return "< " + prefix + "0.0001"
	}
	if n > 1000 {
		if usd {
			return Dollar(n, 0)
		}
		return Grouped(n, 0)
	}
	if usd {
		if n < 0.1 {
			return Dollar(n, 4)
		}
		return Dollar(n, 2)
	}
	return decimal.NewFromFloat(n).Round(4).String()
}

// AmountString is Amount for a numeric string; an empty or malformed string is zero.
func AmountString(s string, usd bool) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount(math.NaN(), usd)
	}
	return Amount(d.InexactFloat64(), usd)
}

// Dollar formats n as US dollars with thousands separators and exactly digits decimals.
func Dollar(n float64, digits int) string {
	if !finite(n) {
		return "$0"
	}
	d := decimal.NewFromFloat(n).Round(int32(digits))
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + "$" + group(d.Abs().StringFixed(int32(digits)))
}

// Grouped formats n with thousands separators and exactly digits decimals.
func Grouped(n float64, digits int) string {
	if !finite(n) {
		return "0"
	}
	d := decimal.NewFromFloat(n).Round(int32(digits))
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return sign + group(d.Abs().StringFixed(int32(digits)))
}

// Percent formats a percent change and reports its direction.
func Percent(p float64) (string, model.Trend) {
	if !finite(p) || p == 0 {
		return "0%", model.TrendFlat
	}
	if p > 0 && p < tinyThreshold {
		return "< 0.0001%", model.TrendUp
	}
	if p < 0 && p > -tinyThreshold {
		return "< 0.0001%", model.TrendDown
	}

	rounded := decimal.NewFromFloat(p).Round(2)
	if rounded.IsZero() {
		return "0%", model.TrendFlat
	}
	if rounded.Sign() > 0 {
		if rounded.GreaterThan(decimal.NewFromInt(100)) {
			return "+" + decimal.NewFromFloat(p).Round(0).String() + "%", model.TrendUp
		}
		return "+" + rounded.StringFixed(2) + "%", model.TrendUp
	}
	return rounded.StringFixed(2) + "%", model.TrendDown
}

// group inserts commas into the integer part of an unsigned fixed-point string.
func group(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
