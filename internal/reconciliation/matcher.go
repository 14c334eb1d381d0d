package reconciliation

import (
	"strings"

	"github.com/shopspring/decimal"

	"billing/internal/ledger"
	"billing/internal/timeutil"
	"billing/pkg/models"
)

// candidate is a pending invoice with the balance not yet claimed by an
// earlier transaction of the same statement.
type candidate struct {
	view      ledger.InvoiceView
	remaining decimal.Decimal
}

// Match pairs the incoming transactions with pending invoices. Rules are
// tried in order:
//
//  1. the invoice number appears in the narration or reference
//  2. the client name appears and the amount equals the pending balance
//  3. the client name appears and the amount fits the pending balance
//     (oldest invoice first)
//  4. the amount equals the pending balance of exactly one invoice
//
// A match never exceeds the invoice's pending balance, counting earlier
// matches from the same statement. A transaction whose date and amount are
// already recorded against a matching invoice is reported as Recorded.
func Match(transactions []BankTransaction, invoices []ledger.InvoiceView) Result {
	var res Result

	var open []*candidate
	for _, v := range invoices {
		if v.Status == models.StatusPending && v.Pending.IsPositive() {
			open = append(open, &candidate{view: v, remaining: v.Pending})
		}
	}

	for _, tx := range transactions {
		if !tx.IsIncoming() {
			res.Outgoing++
			continue
		}

		if m, ok := alreadyRecorded(tx, invoices); ok {
			res.Recorded = append(res.Recorded, m)
			continue
		}

		c, basis := pick(tx, open)
		if c == nil {
			res.Unmatched = append(res.Unmatched, tx)
			continue
		}
		c.remaining = c.remaining.Sub(tx.Amount)
		res.Matches = append(res.Matches, Pairing{Transaction: tx, Invoice: c.view, Basis: basis})
	}

	return res
}

func pick(tx BankTransaction, open []*candidate) (*candidate, Basis) {
	text := strings.ToLower(tx.text())
	fits := func(c *candidate) bool {
		return tx.Amount.LessThanOrEqual(c.remaining)
	}

	for _, c := range open {
		if fits(c) && mentions(text, c.view.Invoice.DocumentNo) {
			return c, BasisReference
		}
	}
	for _, c := range open {
		if tx.Amount.Equal(c.remaining) && mentions(text, c.view.Invoice.Client.Name) {
			return c, BasisClientAmount
		}
	}
	for _, c := range open {
		if fits(c) && mentions(text, c.view.Invoice.Client.Name) {
			return c, BasisClient
		}
	}

	var only *candidate
	for _, c := range open {
		if !tx.Amount.Equal(c.remaining) {
			continue
		}
		if only != nil {
			return nil, ""
		}
		only = c
	}
	if only != nil {
		return only, BasisAmount
	}
	return nil, ""
}

func alreadyRecorded(tx BankTransaction, invoices []ledger.InvoiceView) (Pairing, bool) {
	text := strings.ToLower(tx.text())
	date := timeutil.FormatDate(tx.Date)

	for _, v := range invoices {
		basis := BasisReference
		if !mentions(text, v.Invoice.DocumentNo) {
			if !mentions(text, v.Invoice.Client.Name) {
				continue
			}
			basis = BasisClient
		}
		for _, p := range v.Payments {
			if p.Date == date && p.Amount.Equal(tx.Amount) {
				return Pairing{Transaction: tx, Invoice: v, Basis: basis}, true
			}
		}
	}
	return Pairing{}, false
}

// mentions reports whether needle occurs in the lower-cased text, ignoring
// case and surrounding space.
func mentions(text, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return needle != "" && strings.Contains(text, needle)
}
