package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"billing/internal/timeutil"
	"billing/pkg/models"
)

// Period is an inclusive date range. A zero From or To leaves that side open.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the stored date falls inside the period. Dates
// that do not parse are treated as earlier than any real date.
func (p Period) Contains(date string) bool {
	d := timeutil.ParseDateOrZero(date)
	if !p.From.IsZero() && d.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && d.After(p.To) {
		return false
	}
	return true
}

// Filter narrows a record set to a period and, when client is non-empty, to a
// single client.
type Filter struct {
	Period Period
	Client string
}

// Invoices returns the invoices matching f, in stored order.
func (f Filter) Invoices(records *models.Records) []models.Document {
	var out []models.Document
	for _, inv := range records.Invoices {
		if !f.Period.Contains(inv.Date) {
			continue
		}
		if f.Client != "" && inv.Client.Name != f.Client {
			continue
		}
		out = append(out, inv.Clone())
	}
	return out
}

// Payments returns the payments matching f, in ledger order.
func (f Filter) Payments(records *models.Records) []models.Payment {
	var out []models.Payment
	for _, p := range records.Payments {
		if !f.Period.Contains(p.Date) {
			continue
		}
		if f.Client != "" && p.ClientName != f.Client {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Summary holds the headline figures of the ledger.
type Summary struct {
	Billed       decimal.Decimal // invoice amounts in the filter
	Revenue      decimal.Decimal // payments received in the filter
	GSTLiability decimal.Decimal // frozen tax of invoices in the filter
	PendingDues  decimal.Decimal // all invoices minus all payments, ignoring the filter

	InvoiceCount int
	PaymentCount int
}

// Summarize computes the ledger summary for f.
func Summarize(records *models.Records, f Filter) Summary {
	s := Summary{
		Billed:       decimal.Zero,
		Revenue:      decimal.Zero,
		GSTLiability: decimal.Zero,
		PendingDues:  decimal.Zero,
	}

	for _, inv := range f.Invoices(records) {
		s.Billed = s.Billed.Add(inv.Amount)
		s.GSTLiability = s.GSTLiability.Add(inv.Tax)
		s.InvoiceCount++
	}
	for _, p := range f.Payments(records) {
		s.Revenue = s.Revenue.Add(p.Amount)
		s.PaymentCount++
	}

	for _, inv := range records.Invoices {
		s.PendingDues = s.PendingDues.Add(inv.Amount)
	}
	for _, p := range records.Payments {
		s.PendingDues = s.PendingDues.Sub(p.Amount)
	}

	return s
}

// Clients returns the distinct invoice client names, sorted.
func Clients(records *models.Records) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, inv := range records.Invoices {
		if _, ok := seen[inv.Client.Name]; ok {
			continue
		}
		seen[inv.Client.Name] = struct{}{}
		names = append(names, inv.Client.Name)
	}
	sort.Strings(names)
	return names
}
