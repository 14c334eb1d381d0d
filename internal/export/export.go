// Package export writes filtered invoices and payments as CSV or XLSX tables.
package export

import (
	"errors"
	"fmt"
	"strings"

	"billing/internal/ledger"
	"billing/internal/money"
	"billing/pkg/models"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

var (
	// InvoiceColumns is the header of every invoice export.
	InvoiceColumns = []string{"S.No.", "Invoice No", "Date", "Client", "Amount", "Tax", "Paid", "Pending", "Status", "Items"}

	// PaymentColumns is the header of every payment export.
	PaymentColumns = []string{"S.No.", "Payment ID", "Date", "Client", "Amount", "Mode", "Invoice ID", "Invoice Date"}
)

// Table is one sheet of export data. Numeric marks columns written as numbers
// in spreadsheet formats.
type Table struct {
	Name    string
	Header  []string
	Numeric []bool
	Rows    [][]string
}

// Invoices builds the invoice table for the invoices matching f. Paid,
// pending and status are derived from the full payment ledger.
func Invoices(records *models.Records, f ledger.Filter) Table {
	t := Table{
		Name:    "Bills",
		Header:  InvoiceColumns,
		Numeric: []bool{true, false, false, false, true, true, true, true, false, false},
	}

	for i, inv := range f.Invoices(records) {
		v := ledger.View(&inv, records.Payments)
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(i + 1),
			inv.DocumentNo,
			inv.Date,
			inv.Client.Name,
			money.Plain(inv.Amount),
			money.Plain(inv.Tax),
			money.Plain(v.Paid),
			money.Plain(v.Pending),
			string(v.Status),
			inv.ItemSummary(),
		})
	}
	return t
}

// Payments builds the payment table for the payments matching f.
func Payments(records *models.Records, f ledger.Filter) Table {
	t := Table{
		Name:    "Revenue",
		Header:  PaymentColumns,
		Numeric: []bool{true, false, false, false, true, false, false, false},
	}

	for i, p := range f.Payments(records) {
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(i + 1),
			p.ID,
			p.Date,
			p.ClientName,
			money.Plain(p.Amount),
			string(p.Mode),
			p.InvoiceID,
			p.InvoiceDate,
		})
	}
	return t
}
