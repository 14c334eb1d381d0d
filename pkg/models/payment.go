package models

import (
	"github.com/shopspring/decimal"
)

// PaymentMode is how a payment was received.
type PaymentMode string

const (
	ModeUPI      PaymentMode = "UPI"
	ModeCash     PaymentMode = "Cash"
	ModeCheque   PaymentMode = "Cheque"
	ModeTransfer PaymentMode = "Transfer"
)

// PaymentModes lists the accepted modes in display order.
var PaymentModes = []PaymentMode{ModeUPI, ModeCash, ModeCheque, ModeTransfer}

// Payment is an append-only ledger entry against an invoice.
type Payment struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id" validate:"required"` // Internal id of a FINAL BILL document
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Mode      PaymentMode     `json:"mode" validate:"required,oneof=UPI Cash Cheque Transfer"`

	// Copied from the invoice when recorded
	ClientName  string `json:"client_name"`
	InvoiceDate string `json:"invoice_date,omitempty"`
}

// Records is the full persisted snapshot owned by the document store.
type Records struct {
	Quotations []Document `json:"quotations"`
	Invoices   []Document `json:"invoices"`
	Payments   []Payment  `json:"payments"`
}

// NewRecords returns an empty, valid snapshot.
func NewRecords() *Records {
	return &Records{
		Quotations: []Document{},
		Invoices:   []Document{},
		Payments:   []Payment{},
	}
}

// Collection returns the slice holding documents of the given kind.
func (r *Records) Collection(kind Kind) []Document {
	if kind == KindFinalBill {
		return r.Invoices
	}
	return r.Quotations
}

// Clone returns a deep copy so callers never share slices with the store.
func (r *Records) Clone() *Records {
	out := &Records{
		Quotations: make([]Document, len(r.Quotations)),
		Invoices:   make([]Document, len(r.Invoices)),
		Payments:   append([]Payment{}, r.Payments...),
	}
	for i, d := range r.Quotations {
		out.Quotations[i] = d.Clone()
	}
	for i, d := range r.Invoices {
		out.Invoices[i] = d.Clone()
	}
	return out
}
