package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"billing/internal/logger"
)

const (
	pdfMargin     = 10.0
	pdfPageBottom = 15.0
)

// PDFRenderer renders documents with the core Times font on A4 paper.
type PDFRenderer struct {
	// Compress deflates page streams. Disabled output keeps text searchable
	// in the raw bytes.
	Compress bool
}

// NewPDFRenderer returns a renderer with compressed output.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Compress: true}
}

func (r *PDFRenderer) Format() Format { return FormatPDF }

// pdfDoc wraps gofpdf with the text pipeline every string goes through.
type pdfDoc struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func newPDFDoc(orientation, size string, compress bool) *pdfDoc {
	pdf := gofpdf.New(orientation, "mm", size, "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	return &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// text converts s to the core font encoding.
func (d *pdfDoc) text(s string) string {
	return d.tr(latin1Text(s))
}

func (d *pdfDoc) cell(w, h float64, s, border string, ln int, align string, fill bool) {
	d.CellFormat(w, h, d.text(s), border, ln, align, fill, 0, "")
}

// logo draws the image at path, skipping it when the file is missing or
// cannot be decoded.
func (d *pdfDoc) logo(path string, x, y, w float64) {
	if path == "" {
		return
	}
	log := logger.WithComponent("render")

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		log.Warn().Str("logo", path).Msg("unsupported logo type, skipping")
		return
	}
	if _, err := os.Stat(path); err != nil {
		log.Warn().Err(err).Str("logo", path).Msg("logo not found, skipping")
		return
	}

	d.ImageOptions(path, x, y, w, 0, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	if d.Err() {
		log.Warn().Err(d.Error()).Str("logo", path).Msg("logo could not be loaded, skipping")
		d.ClearError()
	}
}

// signatory prints the signature block at (x, y).
func (d *pdfDoc) signatory(name string, x, y float64) {
	d.SetFont("Times", "B", 10)
	d.SetXY(x, y)
	d.cell(60, 5, name, "", 1, "C", false)
	d.SetX(x)
	d.cell(60, 5, "AUTHORIZED SIGNATORY", "", 0, "C", false)
}

func (d *pdfDoc) bytes() ([]byte, error) {
	if err := d.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render draws v as an A4 portrait document.
func (r *PDFRenderer) Render(v *View) (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("%w: pdf: %v", ErrRenderFailed, p)
		}
	}()

	pdf := newPDFDoc("P", "A4", r.Compress)
	pdf.SetAutoPageBreak(true, pdfPageBottom)
	pdf.AddPage()
	_, pageH := pdf.GetPageSize()

	lh := v.Letterhead

	// Letterhead
	pdf.logo(lh.LogoPath, 10, 10, 35)
	pdf.SetXY(110, 12)
	pdf.SetFont("Times", "B", 22)
	pdf.SetTextColor(0, 0, 128)
	pdf.cell(90, 8, lh.Name, "", 1, "R", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Times", "", 10)
	pdf.SetXY(110, 20)
	pdf.MultiCell(90, 5, pdf.text(lh.Address), "", "R", false)
	pdf.SetX(110)
	pdf.cell(90, 5, "Ph: "+lh.Phone, "", 1, "R", false)
	if v.ShowGST && lh.GSTIN != "" {
		pdf.SetX(110)
		pdf.cell(90, 5, "GST: "+lh.GSTIN, "", 1, "R", false)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(10, 50, 200, 50)

	pdf.SetY(55)
	pdf.SetFont("Times", "B", 16)
	pdf.cell(0, 8, v.Title, "", 1, "C", false)

	// Document and client details
	yInfo := 68.0
	pdf.SetXY(10, yInfo)
	pdf.SetFont("Times", "B", 10)
	pdf.cell(90, 5, "DOCUMENT DETAILS:", "", 1, "L", false)
	pdf.SetFont("Times", "", 10)
	pdf.SetX(10)
	pdf.cell(90, 5, v.NumberLabel+": "+v.DocumentNo, "", 1, "L", false)
	pdf.SetX(10)
	pdf.cell(90, 5, "Date: "+v.Date, "", 1, "L", false)

	pdf.SetXY(110, yInfo)
	pdf.SetFont("Times", "B", 10)
	pdf.cell(90, 5, "TO CLIENT:", "", 1, "L", false)
	pdf.SetXY(110, yInfo+6)
	pdf.SetFont("Times", "B", 12)
	pdf.cell(90, 6, v.Client.Name, "", 1, "L", false)
	pdf.SetXY(110, yInfo+12)
	pdf.SetFont("Times", "", 10)
	pdf.MultiCell(90, 5, pdf.text(strings.Join(v.contactLines(), "\n")), "", "L", false)

	// Items
	cols := []float64{120, 20, 25, 25}
	pdf.SetXY(10, max(pdf.GetY(), yInfo+25)+5)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Times", "B", 10)
	for i, h := range []string{"Description", "Qty", "Rate (Rs.)", "Amount (Rs.)"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.cell(cols[i], 8, h, "1", 0, align, true)
	}
	pdf.Ln(-1)

	pdf.SetFont("Times", "", 10)
	for _, it := range v.Items {
		desc := pdf.text(it.Description)
		lines := len(pdf.SplitLines([]byte(desc), cols[0]-2))
		rowH := max(8, float64(lines)*5)

		if pdf.GetY()+rowH > pageH-pdfPageBottom {
			pdf.AddPage()
		}
		x, y := pdf.GetX(), pdf.GetY()

		pdf.CellFormat(cols[0], rowH, "", "1", 0, "L", false, 0, "")
		pdf.cell(cols[1], rowH, it.Quantity, "1", 0, "R", false)
		pdf.cell(cols[2], rowH, it.Rate, "1", 0, "R", false)
		pdf.cell(cols[3], rowH, it.Amount, "1", 0, "R", false)

		pdf.SetXY(x, y)
		pdf.MultiCell(cols[0], 5, desc, "", "L", false)
		pdf.SetXY(x, y+rowH)
	}

	// Totals
	pdf.Ln(2)
	total := func(label, value string, bold bool) {
		if bold {
			pdf.SetFont("Times", "B", 11)
		} else {
			pdf.SetFont("Times", "", 10)
		}
		pdf.cell(155, 6, label, "", 0, "R", false)
		pdf.cell(35, 6, value, "", 1, "R", false)
	}
	total("Subtotal:", v.Subtotal, false)
	if v.ShowGST {
		total(v.GSTLabel, v.GST, false)
	}
	total("Grand Total:", v.GrandTotal, true)
	pdf.Ln(2)
	pdf.SetFont("Times", "I", 10)
	pdf.cell(0, 6, v.AmountInWords, "", 1, "R", false)

	if len(v.Schedule) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Times", "B", 10)
		pdf.cell(0, 6, "PAYMENT SCHEDULE:", "", 1, "L", false)
		pdf.SetFillColor(245, 245, 245)
		pdf.cell(80, 6, "Stage", "1", 0, "L", true)
		pdf.cell(40, 6, "Amount", "1", 0, "C", true)
		pdf.cell(70, 6, "Date", "1", 1, "L", true)
		pdf.SetFont("Times", "", 9)
		for _, row := range v.Schedule {
			pdf.cell(80, 6, row.Stage, "1", 0, "L", false)
			pdf.cell(40, 6, row.Amount, "1", 0, "C", false)
			pdf.cell(70, 6, row.Date, "1", 1, "L", false)
		}
	}

	if strings.TrimSpace(v.Terms) != "" {
		pdf.Ln(8)
		pdf.SetFont("Times", "B", 10)
		pdf.cell(0, 6, "TERMS & CONDITIONS:", "", 1, "L", false)
		pdf.SetFont("Times", "", 10)
		pdf.MultiCell(0, 5, pdf.text(v.Terms), "", "L", false)
	}

	// Footer: bank details and signature
	if pdf.GetY()+40 > pageH-pdfPageBottom {
		pdf.AddPage()
	}
	pdf.Ln(10)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(5)
	yFoot := pdf.GetY()
	pdf.SetFont("Times", "B", 10)
	pdf.cell(90, 5, "ACCOUNT DETAILS", "", 1, "L", false)
	pdf.SetFont("Times", "", 9)
	pdf.cell(90, 5, "BANK: "+lh.BankName, "", 1, "L", false)
	pdf.cell(90, 5, "A/C: "+lh.AccountNumber, "", 1, "L", false)
	pdf.cell(90, 5, "IFSC: "+lh.IFSC, "", 1, "L", false)
	pdf.cell(90, 5, "NAME: "+lh.AccountName, "", 1, "L", false)
	pdf.signatory(lh.Signatory, 130, yFoot+15)

	out, err = pdf.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrRenderFailed, err)
	}
	return out, nil
}
