package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk format of every record date.
const DateLayout = "2006-01-02"

// Kind tags a Document as a quotation or a final bill.
type Kind string

const (
	KindQuotation Kind = "QUOTATION"
	KindFinalBill Kind = "FINAL BILL"
)

// Valid reports whether k is one of the known document kinds.
func (k Kind) Valid() bool {
	return k == KindQuotation || k == KindFinalBill
}

// Title is the heading printed on rendered documents.
func (k Kind) Title() string {
	if k == KindFinalBill {
		return "BILL"
	}
	return string(k)
}

// NumberLabel is the caption printed next to the document number.
func (k Kind) NumberLabel() string {
	if k == KindFinalBill {
		return "Invoice No"
	}
	return "Quotation No"
}

// FileSuffix names downloaded artifacts ("<client> Bill.pdf").
func (k Kind) FileSuffix() string {
	if k == KindFinalBill {
		return "Bill"
	}
	return "Quotation"
}

// Status is the payment state of an invoice. Quotations carry no status.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusManual    Status = "Completed (Manual)"
)

// Units accepted on a line item.
var Units = []string{"Sq.Ft", "Sq.Mt", "L/S", "Nos", "Job", "Sq.In", "Kg/Mt", "Secs"}

// WorkCatalog lists the standard service descriptions offered when building items.
var WorkCatalog = []string{
	"Site Visit",
	"Architecture & Design",
	"Structural Design",
	"Electrical & Plumbing",
	"2D & 3D",
	"Elevation Drawing",
	"Landscape Drawing",
	"Vastu consultancy",
	"Supply",
	"Walkthrough",
}

// DefaultTerms is pre-filled into every new draft.
const DefaultTerms = `- 30% Advance prior to initiation of the work.
- 2 extra changes will be provided free of cost. Further changes will be chargeable as per requirement.
- Site visit will be chargeable (unless specified above).
- The project is to be completed within six months. In case of delay, the agreed price will be revised by 10% for every additional two months.`

// LineItem is one billable row of a document.
type LineItem struct {
	Description string          `json:"description" validate:"required"`
	Unit        string          `json:"unit" validate:"required,oneof=Sq.Ft Sq.Mt L/S Nos Job Sq.In Kg/Mt Secs"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"` // currency per unit
}

// Amount returns quantity * rate, unrounded.
func (li LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.Rate)
}

// JoinDescription merges selected catalog labels and an optional custom text
// into a single item description.
func JoinDescription(catalog []string, custom string) string {
	parts := make([]string, 0, len(catalog)+1)
	for _, c := range catalog {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	if custom = strings.TrimSpace(custom); custom != "" {
		parts = append(parts, custom)
	}
	return strings.Join(parts, ", ")
}

// Client is the billed party.
type Client struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ScheduleRow is one milestone of an advisory payment plan. Amount is kept as
// entered; it is never reconciled against payments.
type ScheduleRow struct {
	Stage  string `json:"stage"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

// IsBlank reports whether the row carries neither a stage nor an amount.
func (r ScheduleRow) IsBlank() bool {
	return strings.TrimSpace(r.Stage) == "" && strings.TrimSpace(r.Amount) == ""
}

// Document is a finalized quotation or invoice.
type Document struct {
	// Core identifiers
	ID         string `json:"id"`          // Internal unique key
	DocumentNo string `json:"document_no"` // Human-facing sequential number
	Kind       Kind   `json:"kind"`

	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Client Client `json:"client"`

	Items    []LineItem    `json:"items" validate:"dive"`
	GSTRate  string        `json:"gst_rate"` // Key into the GST table, e.g. "18%"
	HideGST  bool          `json:"hide_gst"`
	Schedule []ScheduleRow `json:"schedule,omitempty"`
	Terms    string        `json:"terms"`

	// Invoices only
	Status Status `json:"status,omitempty"`

	// Frozen at finalize time
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
}

// ItemSummary joins item descriptions for tabular listings.
func (d *Document) ItemSummary() string {
	descs := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		descs = append(descs, it.Description)
	}
	return strings.Join(descs, "; ")
}

// ActiveSchedule returns the schedule rows that carry a stage or an amount.
func (d *Document) ActiveSchedule() []ScheduleRow {
	var rows []ScheduleRow
	for _, r := range d.Schedule {
		if !r.IsBlank() {
			rows = append(rows, r)
		}
	}
	return rows
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	d.Items = append([]LineItem(nil), d.Items...)
	d.Schedule = append([]ScheduleRow(nil), d.Schedule...)
	return d
}
