// Package ledger aggregates payments per invoice and derives invoice status.
//
// Status is a pure function of the invoice and its payments. The only status
// persisted as authoritative is the operator's manual completion; Pending and
// Completed are re-derived on every read.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"billing/internal/money"
	"billing/pkg/models"
)

var (
	// ErrNotPending is returned when recording a payment against an invoice
	// that is already completed.
	ErrNotPending = errors.New("invoice is not pending")

	// ErrNonPositiveAmount is returned for zero or negative payments.
	ErrNonPositiveAmount = errors.New("payment amount must be greater than zero")

	// ErrOverpayment is returned when a payment exceeds the pending balance.
	ErrOverpayment = errors.New("payment exceeds pending balance")

	// ErrNotInvoice is returned when a payment targets a quotation.
	ErrNotInvoice = errors.New("payments can only be recorded against final bills")
)

// Paid sums the payments recorded against invoice.
func Paid(invoice *models.Document, payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.InvoiceID == invoice.ID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Pending is the frozen invoice amount minus everything paid against it.
func Pending(invoice *models.Document, payments []models.Payment) decimal.Decimal {
	return invoice.Amount.Sub(Paid(invoice, payments))
}

// StatusFor derives the invoice status. A manual completion is terminal;
// otherwise the invoice is Completed once nothing is pending.
func StatusFor(invoice *models.Document, payments []models.Payment) models.Status {
	if invoice.Status == models.StatusManual {
		return models.StatusManual
	}
	if !Pending(invoice, payments).IsPositive() {
		return models.StatusCompleted
	}
	return models.StatusPending
}

// PaymentsFor returns the payments recorded against invoice in ledger order.
func PaymentsFor(invoice *models.Document, payments []models.Payment) []models.Payment {
	var out []models.Payment
	for _, p := range payments {
		if p.InvoiceID == invoice.ID {
			out = append(out, p)
		}
	}
	return out
}

// Reconcile re-derives the status of every invoice in records and reports
// whether any stored status changed.
func Reconcile(records *models.Records) bool {
	changed := false
	for i := range records.Invoices {
		inv := &records.Invoices[i]
		if s := StatusFor(inv, records.Payments); s != inv.Status {
			inv.Status = s
			changed = true
		}
	}
	return changed
}

// CheckPayment validates a new payment of amount against invoice before it is
// appended. The ledger is never modified here.
func CheckPayment(invoice *models.Document, payments []models.Payment, amount decimal.Decimal) error {
	if invoice.Kind != models.KindFinalBill {
		return ErrNotInvoice
	}
	if s := StatusFor(invoice, payments); s != models.StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, invoice.DocumentNo, s)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, money.Plain(amount))
	}
	if pending := Pending(invoice, payments); amount.GreaterThan(pending) {
		return fmt.Errorf("%w: %s requested, %s pending", ErrOverpayment, money.Plain(amount), money.Plain(pending))
	}
	return nil
}

// InvoiceView is an invoice with its derived ledger figures.
type InvoiceView struct {
	Invoice  models.Document
	Paid     decimal.Decimal
	Pending  decimal.Decimal
	Status   models.Status
	Payments []models.Payment
}

// View derives the ledger figures for one invoice.
func View(invoice *models.Document, payments []models.Payment) InvoiceView {
	paid := Paid(invoice, payments)
	return InvoiceView{
		Invoice:  invoice.Clone(),
		Paid:     paid,
		Pending:  invoice.Amount.Sub(paid),
		Status:   StatusFor(invoice, payments),
		Payments: PaymentsFor(invoice, payments),
	}
}

// Views derives ledger figures for every invoice in records, in stored order.
func Views(records *models.Records) []InvoiceView {
	out := make([]InvoiceView, 0, len(records.Invoices))
	for i := range records.Invoices {
		out = append(out, View(&records.Invoices[i], records.Payments))
	}
	return out
}
