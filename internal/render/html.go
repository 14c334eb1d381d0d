package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"billing/internal/logger"
)

var previewTemplate = template.Must(template.New("preview").Funcs(template.FuncMap{
	"clean": xmlText,
	"lines": func(s string) []string { return strings.Split(xmlText(s), "\n") },
}).Parse(`<div style="border:1px solid #ddd; padding:20px; font-family:'Times New Roman'; color:black; background:white;">
<table style="width:100%; border:none;"><tr>
<td style="width:50%; vertical-align:top;">{{if .Logo}}<img src="{{.Logo}}" width="120" style="vertical-align:top;">{{end}}</td>
<td style="width:50%; text-align:right; vertical-align:top;"><h2 style="color:#000080; margin:0;">{{clean .Letterhead.Name}}</h2>
<div style="font-size:12px;">{{range lines .Letterhead.Address}}{{.}}<br>{{end}}Ph: {{clean .Letterhead.Phone}}{{if and .ShowGST .Letterhead.GSTIN}}<br>GST: {{clean .Letterhead.GSTIN}}{{end}}</div></td>
</tr></table>
<hr style="border:1px solid #333; margin:10px 0;">
<h3 style="text-align:center;">{{clean .Title}}</h3>
<table style="width:100%; border-collapse:collapse; margin-bottom:20px;"><tr>
<td style="width:48%; border:1px solid #ccc; padding:10px; vertical-align:top;"><strong>DETAILS:</strong><br>Type: {{clean .Title}}<br>Date: {{clean .Date}}<br>{{.NumberLabel}}: {{clean .DocumentNo}}</td>
<td style="width:4%; border:none;"></td>
<td style="width:48%; border:1px solid #ccc; padding:10px; vertical-align:top;"><strong>TO CLIENT:</strong><br><strong style="font-size:16px;">{{clean .Client.Name}}</strong>{{range .Contact}}<br>{{clean .}}{{end}}</td>
</tr></table>
<table style="width:100%; border-collapse:collapse; border:1px solid #ccc; font-size:13px;" border="1">
<tr style="background:#eee;"><th>Description</th><th>Qty</th><th>Rate (Rs.)</th><th>Amount (Rs.)</th></tr>
{{range .Items}}<tr><td>{{range $i, $l := lines .Description}}{{if $i}}<br>{{end}}{{$l}}{{end}}</td><td align="right">{{clean .Quantity}}</td><td align="right">{{.Rate}}</td><td align="right">{{.Amount}}</td></tr>
{{end}}<tr><td colspan="3" align="right">Subtotal:</td><td align="right">{{.Subtotal}}</td></tr>
{{if .ShowGST}}<tr><td colspan="3" align="right">{{.GSTLabel}}</td><td align="right">{{.GST}}</td></tr>
{{end}}<tr><td colspan="3" align="right"><b>Grand Total:</b></td><td align="right"><b>{{.GrandTotal}}</b></td></tr>
</table>
<p style="text-align:right; font-style:italic;">{{.AmountInWords}}</p>
{{if .Schedule}}<div style="margin-top:15px; border:1px solid #ccc;"><strong>PAYMENT SCHEDULE:</strong>
<table style="width:100%; border-collapse:collapse; font-size:12px;"><tr style="background:#eee;"><th>Stage</th><th>Amount</th><th>Date</th></tr>
{{range .Schedule}}<tr><td>{{clean .Stage}}</td><td align="center">{{clean .Amount}}</td><td>{{clean .Date}}</td></tr>
{{end}}</table></div>
{{end}}{{if .Terms}}<div style="margin-top:15px; font-size:12px;"><strong>TERMS &amp; CONDITIONS:</strong><br>{{range lines .Terms}}{{.}}<br>{{end}}</div>
{{end}}<hr style="border:1px solid #333; margin:10px 0;">
<table style="width:100%; border:none; font-size:12px;"><tr>
<td style="vertical-align:top;"><strong>ACCOUNT DETAILS</strong><br>BANK: {{clean .Letterhead.BankName}}<br>A/C: {{clean .Letterhead.AccountNumber}}<br>IFSC: {{clean .Letterhead.IFSC}}<br>NAME: {{clean .Letterhead.AccountName}}</td>
<td style="text-align:center; vertical-align:bottom;"><strong>{{clean .Letterhead.Signatory}}</strong><br><strong>AUTHORIZED SIGNATORY</strong></td>
</tr></table>
</div>
`))

// HTMLRenderer produces the on-screen preview fragment.
type HTMLRenderer struct{}

func (HTMLRenderer) Format() Format { return FormatHTML }

type htmlData struct {
	*View
	Logo    template.URL
	Contact []string
}

// Render executes the preview template for v.
func (HTMLRenderer) Render(v *View) ([]byte, error) {
	data := htmlData{
		View:    v,
		Logo:    inlineLogo(v.Letterhead.LogoPath),
		Contact: v.contactLines(),
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// inlineLogo returns the logo as a data URI, or "" when it cannot be read.
func inlineLogo(path string) template.URL {
	if path == "" {
		return ""
	}

	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	default:
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log := logger.WithComponent("render")
		log.Warn().Err(err).Str("logo", path).Msg("logo not readable, skipping")
		return ""
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
