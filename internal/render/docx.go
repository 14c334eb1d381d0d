package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	docxFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`
)

// DOCXRenderer writes a minimal WordprocessingML package. The logo is not
// embedded.
type DOCXRenderer struct{}

func (DOCXRenderer) Format() Format { return FormatDOCX }

// run is a span of text with optional emphasis.
type run struct {
	text   string
	bold   bool
	italic bool
	size   int // half-points, 0 keeps the default
}

type docxWriter struct {
	b strings.Builder
}

func (w *docxWriter) runs(rs ...run) {
	for _, r := range rs {
		w.b.WriteString(`<w:r><w:rPr><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman"/>`)
		if r.bold {
			w.b.WriteString(`<w:b/>`)
		}
		if r.italic {
			w.b.WriteString(`<w:i/>`)
		}
		size := r.size
		if size == 0 {
			size = 20
		}
		fmt.Fprintf(&w.b, `<w:sz w:val="%d"/></w:rPr>`, size)

		for i, line := range strings.Split(xmlText(r.text), "\n") {
			if i > 0 {
				w.b.WriteString(`<w:br/>`)
			}
			w.b.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(&w.b, []byte(line))
			w.b.WriteString(`</w:t>`)
		}
		w.b.WriteString(`</w:r>`)
	}
}

// para writes a paragraph; align is left, center or right.
func (w *docxWriter) para(align string, rs ...run) {
	w.b.WriteString(`<w:p>`)
	if align != "" && align != "left" {
		fmt.Fprintf(&w.b, `<w:pPr><w:jc w:val="%s"/></w:pPr>`, align)
	}
	w.runs(rs...)
	w.b.WriteString(`</w:p>`)
}

// table writes a bordered grid. widths are in twentieths of a point and the
// first row is bold.
func (w *docxWriter) table(widths []int, align []string, rows [][]string) {
	w.b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&w.b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="auto"/>`, side)
	}
	w.b.WriteString(`</w:tblBorders></w:tblPr><w:tblGrid>`)
	for _, wd := range widths {
		fmt.Fprintf(&w.b, `<w:gridCol w:w="%d"/>`, wd)
	}
	w.b.WriteString(`</w:tblGrid>`)

	for i, row := range rows {
		w.b.WriteString(`<w:tr>`)
		for j, cell := range row {
			fmt.Fprintf(&w.b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, widths[j])
			w.para(align[j], run{text: cell, bold: i == 0})
			w.b.WriteString(`</w:tc>`)
		}
		w.b.WriteString(`</w:tr>`)
	}
	w.b.WriteString(`</w:tbl>`)
}

func (w *docxWriter) rule() {
	w.para("", run{text: strings.Repeat("_", 70)})
}

// Render writes v as a .docx package.
func (DOCXRenderer) Render(v *View) ([]byte, error) {
	lh := v.Letterhead
	w := &docxWriter{}
	w.b.WriteString(docxHeader)

	w.para("right", run{text: lh.Name, bold: true, size: 36})
	contact := lh.Address + "\nPh: " + lh.Phone
	if v.ShowGST && lh.GSTIN != "" {
		contact += "\nGST: " + lh.GSTIN
	}
	w.para("right", run{text: contact})
	w.rule()

	w.para("center", run{text: v.Title, bold: true, size: 32})

	w.para("", run{text: "DOCUMENT DETAILS:", bold: true})
	w.para("", run{text: v.NumberLabel + ": " + v.DocumentNo + "\nDate: " + v.Date})
	w.para("", run{text: "TO CLIENT:", bold: true})
	w.para("", run{text: v.Client.Name, bold: true, size: 24})
	if lines := v.contactLines(); len(lines) > 0 {
		w.para("", run{text: strings.Join(lines, "\n")})
	}

	rows := [][]string{{"Description", "Qty", "Rate (Rs.)", "Amount (Rs.)"}}
	for _, it := range v.Items {
		rows = append(rows, []string{it.Description, it.Quantity, it.Rate, it.Amount})
	}
	w.table([]int{5400, 1300, 1300, 1500}, []string{"left", "right", "right", "right"}, rows)

	w.para("right", run{text: "Subtotal: " + v.Subtotal})
	if v.ShowGST {
		w.para("right", run{text: v.GSTLabel + " " + v.GST})
	}
	w.para("right", run{text: "Grand Total: " + v.GrandTotal, bold: true, size: 22})
	w.para("right", run{text: v.AmountInWords, italic: true})

	if len(v.Schedule) > 0 {
		w.para("", run{text: "PAYMENT SCHEDULE:", bold: true})
		rows := [][]string{{"Stage", "Amount", "Date"}}
		for _, r := range v.Schedule {
			rows = append(rows, []string{r.Stage, r.Amount, r.Date})
		}
		w.table([]int{4500, 2200, 2800}, []string{"left", "center", "left"}, rows)
	}

	if strings.TrimSpace(v.Terms) != "" {
		w.para("", run{text: "TERMS & CONDITIONS:", bold: true})
		w.para("", run{text: v.Terms})
	}
	w.rule()

	w.para("", run{text: "ACCOUNT DETAILS", bold: true})
	w.para("", run{text: fmt.Sprintf("BANK: %s\nA/C: %s\nIFSC: %s\nNAME: %s",
		lh.BankName, lh.AccountNumber, lh.IFSC, lh.AccountName), size: 18})
	w.para("right", run{text: lh.Signatory, bold: true})
	w.para("right", run{text: "AUTHORIZED SIGNATORY", bold: true})

	w.b.WriteString(docxFooter)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", w.b.String()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("%w: docx: %v", ErrRenderFailed, err)
		}
		if _, err := f.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("%w: docx: %v", ErrRenderFailed, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: docx: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}
