package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const rupeeSign = "₹"

var (
	crore    = decimal.NewFromInt(10_000_000)
	lakh     = decimal.NewFromInt(100_000)
	thousand = decimal.NewFromInt(1_000)
)

// FormatINR renders an amount in whole rupees with Indian digit grouping,
// e.g. 1550000 -> "₹15,50,000".
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + rupeeSign + groupIndian(rounded.String())
}

// FormatShortINR renders an amount in crore, lakh or thousand units with one
// decimal place, e.g. 1550000 -> "₹15.5L", 20000 -> "₹20.0K".
func FormatShortINR(amount decimal.Decimal) string {
	switch {
	case amount.GreaterThanOrEqual(crore):
		return rupeeSign + amount.Div(crore).StringFixed(1) + "Cr"
	case amount.GreaterThanOrEqual(lakh):
		return rupeeSign + amount.Div(lakh).StringFixed(1) + "L"
	default:
		return rupeeSign + amount.Div(thousand).StringFixed(1) + "K"
	}
}

// groupIndian groups the last three digits, then every two digits before them.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
