package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// WordsFallback is shown in place of the amount in words when conversion fails.
const WordsFallback = "Check Amount"

var (
	// ErrNegativeAmount is returned when spelling a negative amount.
	ErrNegativeAmount = errors.New("amount is negative")

	// ErrAmountTooLarge is returned for amounts of a thousand crore crore or more.
	ErrAmountTooLarge = errors.New("amount too large to spell")
)

var maxSpellable = decimal.New(1, 17)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// Words spells a rupee amount using the Indian numbering system, e.g.
// "Rupees Two Thousand Three Hundred Sixty Only". Paise are rounded to two
// places.
func Words(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", ErrNegativeAmount
	}
	amount = amount.Round(2)
	if amount.GreaterThanOrEqual(maxSpellable) {
		return "", ErrAmountTooLarge
	}

	rupees := amount.Truncate(0)
	paise := amount.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	if rupees.IsZero() {
		b.WriteString("Zero")
	} else {
		b.WriteString(spell(uint64(rupees.IntPart())))
	}
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(spell(uint64(paise)))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String(), nil
}

// WordsOrFallback is Words with the fallback text substituted on failure.
func WordsOrFallback(amount decimal.Decimal) string {
	w, err := Words(amount)
	if err != nil {
		return WordsFallback
	}
	return w
}

func spell(n uint64) string {
	var parts []string

	if n >= 10000000 {
		parts = append(parts, spell(n/10000000), "Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, belowHundred(n/100000), "Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n uint64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
