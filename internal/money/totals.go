// Package money computes document totals and formats rupee amounts.
//
// All arithmetic is done on unrounded decimals. Rounding to two places happens
// only when an amount is formatted for display.
package money

import (
	"sort"

	"github.com/shopspring/decimal"

	"billing/pkg/models"
)

// DefaultGSTKey is preselected for new drafts.
const DefaultGSTKey = "18%"

var gstRates = map[string]decimal.Decimal{
	"0%":  decimal.Zero,
	"5%":  decimal.RequireFromString("0.05"),
	"12%": decimal.RequireFromString("0.12"),
	"18%": decimal.RequireFromString("0.18"),
}

// GSTKeys returns the known rate keys in ascending order of rate.
func GSTKeys() []string {
	keys := make([]string, 0, len(gstRates))
	for k := range gstRates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return gstRates[keys[i]].LessThan(gstRates[keys[j]])
	})
	return keys
}

// Rate resolves a GST key. Unknown keys resolve to zero.
func Rate(key string) decimal.Decimal {
	if r, ok := gstRates[key]; ok {
		return r
	}
	return decimal.Zero
}

// IsKnownRate reports whether key is in the GST table.
func IsKnownRate(key string) bool {
	_, ok := gstRates[key]
	return ok
}

// Totals is the calculator output every renderer consumes.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
	Rate       decimal.Decimal
	RateKey    string
	HideGST    bool
}

// Compute returns subtotal, tax and grand total for items at the given GST key.
// When hideGST is set the tax is zero and the grand total equals the subtotal.
func Compute(items []models.LineItem, gstKey string, hideGST bool) Totals {
	sub := decimal.Zero
	for _, it := range items {
		sub = sub.Add(it.Amount())
	}

	t := Totals{
		Subtotal: sub,
		Rate:     Rate(gstKey),
		RateKey:  gstKey,
		HideGST:  hideGST,
	}
	if hideGST {
		t.Tax = decimal.Zero
		t.GrandTotal = sub
		return t
	}
	t.Tax = sub.Mul(t.Rate)
	t.GrandTotal = sub.Add(t.Tax)
	return t
}

// ForDocument computes totals from a stored document's items and GST settings.
func ForDocument(d *models.Document) Totals {
	return Compute(d.Items, d.GSTRate, d.HideGST)
}
