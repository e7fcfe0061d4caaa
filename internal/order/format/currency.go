package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrencySymbol = "₹"

// FormatCurrency renders v in rupees with exactly two fraction digits and
// Indian digit grouping: "₹ 12,34,567.00". nil renders as zero.
func FormatCurrency(v *float64) string {
	if v == nil {
		return FormatMoney(DefaultCurrencySymbol, 0)
	}
	return FormatMoney(DefaultCurrencySymbol, *v)
}

// FormatMoney is FormatCurrency with a configurable symbol. Values round
// half away from zero.
func FormatMoney(symbol string, v float64) string {
	if v != v {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + " " + groupIndian(intPart) + "." + frac
}

// groupIndian separates the last three digits, then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
