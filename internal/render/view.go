// Package render turns stored documents into PDF, DOCX and HTML artifacts.
//
// Every renderer consumes the same View. Numbers in a View are already
// formatted from calculator output, so the three formats always agree.
package render

import (
	"errors"
	"fmt"
	"strings"

	"billing/internal/money"
	"billing/pkg/models"
)

// ErrRenderFailed is returned (wrapped) when a renderer cannot produce a
// complete artifact. No bytes are returned alongside it.
var ErrRenderFailed = errors.New("render failed")

// ErrUnknownFormat is returned by ForFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown render format")

// Format names an output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Formats lists the supported document formats.
var Formats = []Format{FormatPDF, FormatDOCX, FormatHTML}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Renderer produces one artifact from a View.
type Renderer interface {
	Render(v *View) ([]byte, error)
	Format() Format
}

// ForFormat returns the default renderer for f.
func ForFormat(f Format) (Renderer, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatPDF:
		return NewPDFRenderer(), nil
	case FormatDOCX:
		return DOCXRenderer{}, nil
	case FormatHTML:
		return HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Letterhead is the business profile printed on documents and receipts.
type Letterhead struct {
	Name      string
	Address   string
	Phone     string
	GSTIN     string
	Signatory string
	LogoPath  string

	BankName      string
	AccountNumber string
	IFSC          string
	AccountName   string
}

// ItemRow is a line item with display strings.
type ItemRow struct {
	Description string
	Quantity    string // quantity and unit, e.g. "2.5 Sq.Ft"
	Rate        string
	Amount      string
}

// View is the renderer-neutral presentation of a document.
type View struct {
	Kind        models.Kind
	Title       string
	NumberLabel string
	DocumentNo  string
	Date        string
	Client      models.Client

	Items []ItemRow

	Subtotal      string
	ShowGST       bool
	GSTLabel      string
	GST           string
	GrandTotal    string
	AmountInWords string

	Schedule []models.ScheduleRow
	Terms    string

	Letterhead Letterhead
}

// NewView builds the shared view of doc. totals must be the calculator output
// for doc; renderers never recompute them.
func NewView(doc *models.Document, totals money.Totals, lh Letterhead) *View {
	v := &View{
		Kind:          doc.Kind,
		Title:         doc.Kind.Title(),
		NumberLabel:   doc.Kind.NumberLabel(),
		DocumentNo:    doc.DocumentNo,
		Date:          doc.Date,
		Client:        doc.Client,
		Subtotal:      money.Rupees(totals.Subtotal),
		ShowGST:       !totals.HideGST,
		GSTLabel:      fmt.Sprintf("GST (%s):", totals.RateKey),
		GST:           money.Rupees(totals.Tax),
		GrandTotal:    money.Rupees(totals.GrandTotal),
		AmountInWords: money.WordsOrFallback(totals.GrandTotal),
		Schedule:      doc.ActiveSchedule(),
		Terms:         doc.Terms,
		Letterhead:    lh,
	}

	for _, it := range doc.Items {
		v.Items = append(v.Items, ItemRow{
			Description: it.Description,
			Quantity:    strings.TrimSpace(it.Quantity.String() + " " + it.Unit),
			Rate:        money.Format(it.Rate),
			Amount:      money.Format(it.Amount()),
		})
	}

	return v
}

// FileName is the suggested download name, e.g. "Ravi Sharma Bill.pdf".
func (v *View) FileName(f Format) string {
	name := strings.TrimSpace(v.Client.Name)
	if name == "" {
		name = v.DocumentNo
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%s %s%s", name, v.Kind.FileSuffix(), f.Extension())
}

// contactLines returns the client phone and address lines that are set.
func (v *View) contactLines() []string {
	var lines []string
	if p := strings.TrimSpace(v.Client.Phone); p != "" {
		lines = append(lines, "Ph: "+p)
	}
	if a := strings.TrimSpace(v.Client.Address); a != "" {
		lines = append(lines, a)
	}
	return lines
}
