package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plain formats d with exactly two decimals and no grouping ("2360.00").
func Plain(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Format formats d with two decimals and Indian digit grouping ("1,23,456.50").
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	out := groupIndian(intPart) + frac
	if neg {
		return "-" + out
	}
	return out
}

// Rupees prefixes a formatted amount with the ASCII currency marker.
func Rupees(d decimal.Decimal) string {
	return "Rs. " + Format(d)
}

// groupIndian inserts commas after the last three digits and then every two.
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
	return strings.Join(groups, ",") + "," + tail
}
