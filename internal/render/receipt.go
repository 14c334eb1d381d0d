package render

import (
	"fmt"

	"billing/internal/money"
	"billing/pkg/models"
)

// Receipt renders a payment acknowledgement on A5 landscape paper.
func Receipt(p models.Payment, lh Letterhead) ([]byte, error) {
	return NewPDFRenderer().Receipt(p, lh)
}

// Receipt renders a payment acknowledgement on A5 landscape paper.
func (r *PDFRenderer) Receipt(p models.Payment, lh Letterhead) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: receipt: %v", ErrRenderFailed, rec)
		}
	}()

	pdf := newPDFDoc("L", "A5", r.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(5, 5, 200, 138, "D")
	pdf.logo(lh.LogoPath, 10, 10, 25)

	pdf.SetY(10)
	pdf.SetFont("Times", "B", 16)
	pdf.SetTextColor(0, 0, 128)
	pdf.cell(0, 8, lh.Name, "", 1, "R", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Times", "", 9)
	pdf.cell(0, 5, lh.Address, "", 1, "R", false)
	pdf.cell(0, 5, "Ph: "+lh.Phone, "", 1, "R", false)

	pdf.Ln(10)
	pdf.SetFont("Times", "B", 14)
	pdf.cell(0, 10, "PAYMENT RECEIPT", "", 1, "C", false)
	pdf.Ln(5)

	pdf.SetX(20)
	pdf.SetFont("Times", "", 12)
	pdf.Write(8, pdf.text("Received with thanks from  "))
	pdf.SetFont("Times", "B", 14)
	pdf.Write(8, pdf.text(p.ClientName))
	pdf.SetFont("Times", "", 12)
	pdf.Ln(16)

	invoiceDate := p.InvoiceDate
	if invoiceDate == "" {
		invoiceDate = "N/A"
	}
	body := fmt.Sprintf("The sum of  %s\n(%s)\n\nPayment Date:  %s\nPayment Mode:  %s\nRef Invoice Date:  %s",
		money.Rupees(p.Amount),
		money.WordsOrFallback(p.Amount),
		p.Date,
		p.Mode,
		invoiceDate,
	)
	pdf.SetX(20)
	pdf.MultiCell(0, 8, pdf.text(body), "", "L", false)

	pdf.signatory(lh.Signatory, 130, 148-35)

	out, err = pdf.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: receipt: %v", ErrRenderFailed, err)
	}
	return out, nil
}
