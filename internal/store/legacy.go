package store

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing/internal/money"
	"billing/pkg/models"
)

// fileSnapshot is the on-disk shape accepted by Load. It reads both the
// current schema and the older flat layout.
type fileSnapshot struct {
	Quotations []storedDocument `json:"quotations"`
	Invoices   []storedDocument `json:"invoices"`
	Payments   *[]storedPayment `json:"payments"`
}

type storedDocument struct {
	models.Document

	// Shadow the typed fields so both layouts decode.
	Items    []storedItem        `json:"items"`
	Schedule []storedScheduleRow `json:"schedule"`

	// Older flat layout
	InvoiceNo     *string `json:"invoice_no"`
	QuotationNo   *string `json:"quotation_no"`
	Type          string  `json:"type"`
	ClientName    string  `json:"client_name"`
	ClientPhone   string  `json:"client_phone"`
	ClientAddress string  `json:"client_address"`
}

type storedItem struct {
	Description string           `json:"description"`
	Unit        string           `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal  `json:"rate"`

	// Older layout
	Desc *string          `json:"desc"`
	Qty  *decimal.Decimal `json:"qty"`
}

type storedScheduleRow struct {
	Stage  looseString `json:"stage"`
	Amount looseString `json:"amount"`
	Date   looseString `json:"date"`
}

type storedPayment struct {
	models.Payment
}

// looseString accepts a JSON string, number, bool or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	*s = looseString(data)
	return nil
}

// normalizeDocument converts a stored record into the typed schema, filling
// defaults missing from older files. changed reports whether the stored form
// differs from what Save would write.
func normalizeDocument(sd storedDocument, kind models.Kind) (doc models.Document, changed bool) {
	doc = sd.Document

	if sd.InvoiceNo != nil || sd.QuotationNo != nil || sd.Type != "" ||
		sd.ClientName != "" || sd.ClientPhone != "" || sd.ClientAddress != "" {
		changed = true
	}

	if doc.ID == "" {
		doc.ID = "LEGACY-" + uuid.NewString()
		changed = true
	}

	if doc.Kind != kind {
		doc.Kind = kind
		changed = true
	}

	if doc.Client.Name == "" && doc.Client.Phone == "" && doc.Client.Address == "" {
		doc.Client = models.Client{
			Name:    sd.ClientName,
			Phone:   sd.ClientPhone,
			Address: sd.ClientAddress,
		}
	}

	if doc.DocumentNo == "" {
		doc.DocumentNo = legacyNumber(sd, kind, doc.ID)
		changed = true
	}

	switch kind {
	case models.KindFinalBill:
		if doc.Status == "" {
			doc.Status = models.StatusPending
			changed = true
		}
	default:
		if doc.Status != "" {
			doc.Status = ""
			changed = true
		}
	}

	if doc.GSTRate == "" {
		doc.GSTRate = money.DefaultGSTKey
		changed = true
	}

	doc.Items = make([]models.LineItem, 0, len(sd.Items))
	for _, it := range sd.Items {
		li, itemChanged := normalizeItem(it)
		doc.Items = append(doc.Items, li)
		changed = changed || itemChanged
	}

	doc.Schedule = nil
	for _, r := range sd.Schedule {
		doc.Schedule = append(doc.Schedule, models.ScheduleRow{
			Stage:  strings.TrimSpace(string(r.Stage)),
			Amount: strings.TrimSpace(string(r.Amount)),
			Date:   strings.TrimSpace(string(r.Date)),
		})
	}

	return doc, changed
}

func legacyNumber(sd storedDocument, kind models.Kind, id string) string {
	if kind == models.KindQuotation && sd.QuotationNo != nil && *sd.QuotationNo != "" {
		return *sd.QuotationNo
	}
	if sd.InvoiceNo != nil && *sd.InvoiceNo != "" {
		return *sd.InvoiceNo
	}
	return id
}

func normalizeItem(it storedItem) (models.LineItem, bool) {
	changed := false
	li := models.LineItem{
		Description: it.Description,
		Unit:        it.Unit,
		Rate:        it.Rate,
	}
	if li.Description == "" && it.Desc != nil {
		li.Description = *it.Desc
		changed = true
	}
	switch {
	case it.Quantity != nil:
		li.Quantity = *it.Quantity
	case it.Qty != nil:
		li.Quantity = *it.Qty
		changed = true
	}
	return li, changed
}

func normalizePayment(sp storedPayment) (models.Payment, bool) {
	p := sp.Payment
	if p.ID == "" {
		p.ID = "LEGACY-" + uuid.NewString()
		return p, true
	}
	return p, false
}

// normalize converts a decoded file into a typed snapshot.
func normalize(fs fileSnapshot) (*models.Records, bool) {
	records := models.NewRecords()
	changed := false

	for _, sd := range fs.Quotations {
		doc, c := normalizeDocument(sd, models.KindQuotation)
		records.Quotations = append(records.Quotations, doc)
		changed = changed || c
	}
	for _, sd := range fs.Invoices {
		doc, c := normalizeDocument(sd, models.KindFinalBill)
		records.Invoices = append(records.Invoices, doc)
		changed = changed || c
	}

	if fs.Payments == nil {
		changed = true
	} else {
		for _, sp := range *fs.Payments {
			p, c := normalizePayment(sp)
			records.Payments = append(records.Payments, p)
			changed = changed || c
		}
	}

	return records, changed
}
