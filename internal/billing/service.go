// Package billing is the application layer of the billing tool.
//
// A Service owns the read-modify-write cycle against the document store:
// every mutating operation loads the full snapshot, applies one change and
// saves it back before returning. Invoice status is re-derived from the
// payment ledger on every load and eagerly after every payment.
package billing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billing/internal/export"
	"billing/internal/ledger"
	"billing/internal/logger"
	"billing/internal/money"
	"billing/internal/numbering"
	"billing/internal/render"
	"billing/internal/store"
	"billing/internal/timeutil"
	"billing/internal/validation"
	"billing/pkg/models"
)

// Service implements the billing operations on top of a Store.
type Service struct {
	store      store.Store
	letterhead render.Letterhead
	log        zerolog.Logger

	newID func() string
	today func() time.Time
}

// NewService returns a service persisting to st and printing lh on documents.
func NewService(st store.Store, lh render.Letterhead) *Service {
	return &Service{
		store:      st,
		letterhead: lh,
		log:        logger.WithComponent("billing"),
		newID:      uuid.NewString,
		today:      timeutil.Today,
	}
}

// Letterhead returns the business profile printed on documents.
func (s *Service) Letterhead() render.Letterhead {
	return s.letterhead
}

// Records loads the snapshot with every invoice status re-derived.
func (s *Service) Records(ctx context.Context) (*models.Records, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, wrap("Records", err, "")
	}
	ledger.Reconcile(records)
	return records, nil
}

// Find returns the quotation or invoice whose id or document number is ref.
func (s *Service) Find(ctx context.Context, ref string) (*models.Document, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	doc, _, _ := find(records, ref)
	if doc == nil {
		return nil, wrap("Find", ErrNotFound, ref)
	}
	out := doc.Clone()
	return &out, nil
}

// find locates ref in records and returns a pointer into the owning slice.
func find(records *models.Records, ref string) (*models.Document, models.Kind, int) {
	ref = strings.TrimSpace(ref)
	for i := range records.Invoices {
		if d := &records.Invoices[i]; d.ID == ref || d.DocumentNo == ref {
			return d, models.KindFinalBill, i
		}
	}
	for i := range records.Quotations {
		if d := &records.Quotations[i]; d.ID == ref || d.DocumentNo == ref {
			return d, models.KindQuotation, i
		}
	}
	return nil, "", -1
}

// NextNumber returns the number the draft would receive if finalized now.
func (s *Service) NextNumber(ctx context.Context, d *Draft) (string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return "", err
	}
	date, err := timeutil.ParseDate(d.Date)
	if err != nil {
		return "", wrap("NextNumber", models.NewValidationError("date", d.Date, "must be a date in YYYY-MM-DD format"), "")
	}
	return numbering.Next(d.Kind, date, records.Collection(d.Kind)), nil
}

// Finalize validates d, freezes its totals, assigns the next document number
// and persists the new document.
func (s *Service) Finalize(ctx context.Context, d *Draft) (*models.Document, error) {
	const op = "Finalize"

	if !d.Kind.Valid() {
		return nil, wrap(op, models.NewValidationError("kind", d.Kind, "must be QUOTATION or FINAL BILL"), "")
	}
	if len(d.Items) == 0 {
		return nil, wrap(op, ErrEmptyDraft, d.Client.Name)
	}

	doc := d.document(s.newID(), "")
	if err := validation.Struct(doc); err != nil {
		return nil, wrap(op, err, "")
	}
	if !money.IsKnownRate(doc.GSTRate) {
		s.log.Warn().Str("gst_rate", doc.GSTRate).Msg("unknown GST rate, taxing at 0%")
	}

	records, err := s.Records(ctx)
	if err != nil {
		return nil, wrap(op, err, "")
	}

	date, _ := timeutil.ParseDate(doc.Date)
	doc.DocumentNo = numbering.Next(doc.Kind, date, records.Collection(doc.Kind))

	if doc.Kind == models.KindFinalBill {
		records.Invoices = append(records.Invoices, doc)
	} else {
		records.Quotations = append(records.Quotations, doc)
	}

	if err := s.store.Save(ctx, records); err != nil {
		return nil, wrap(op, err, doc.DocumentNo)
	}

	log := logger.WithDocument("billing", doc.DocumentNo)
	log.Info().
		Str("kind", string(doc.Kind)).
		Str("client", doc.Client.Name).
		Str("amount", money.Plain(doc.Amount)).
		Msg("document finalized")

	return &doc, nil
}

// Quotations returns every stored quotation in stored order.
func (s *Service) Quotations(ctx context.Context) ([]models.Document, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return records.Quotations, nil
}

// Invoices returns every invoice with its derived ledger figures.
func (s *Service) Invoices(ctx context.Context) ([]ledger.InvoiceView, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Views(records), nil
}

// Invoice returns one invoice with its derived ledger figures.
func (s *Service) Invoice(ctx context.Context, ref string) (*ledger.InvoiceView, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	doc, kind, _ := find(records, ref)
	if doc == nil {
		return nil, wrap("Invoice", ErrNotFound, ref)
	}
	if kind != models.KindFinalBill {
		return nil, wrap("Invoice", ErrNotInvoice, ref)
	}
	v := ledger.View(doc, records.Payments)
	return &v, nil
}

// PaymentRequest describes a payment to record against an invoice.
type PaymentRequest struct {
	Invoice string // id or document number
	Amount  decimal.Decimal
	Date    string // defaults to today
	Mode    models.PaymentMode
}

// RecordPayment appends a payment to the ledger and re-derives the invoice
// status before saving. A rejected payment leaves the ledger untouched.
func (s *Service) RecordPayment(ctx context.Context, req PaymentRequest) (*models.Payment, *ledger.InvoiceView, error) {
	const op = "RecordPayment"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, nil, wrap(op, err, "")
	}

	inv, kind, _ := find(records, req.Invoice)
	if inv == nil {
		return nil, nil, wrap(op, ErrNotFound, req.Invoice)
	}
	if kind != models.KindFinalBill {
		return nil, nil, wrap(op, ledger.ErrNotInvoice, inv.DocumentNo)
	}

	if err := ledger.CheckPayment(inv, records.Payments, req.Amount); err != nil {
		return nil, nil, wrap(op, err, inv.DocumentNo)
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = timeutil.FormatDate(s.today())
	}
	p := models.Payment{
		ID:          s.newID(),
		InvoiceID:   inv.ID,
		Amount:      req.Amount,
		Date:        date,
		Mode:        req.Mode,
		ClientName:  inv.Client.Name,
		InvoiceDate: inv.Date,
	}
	if err := validation.Struct(p); err != nil {
		return nil, nil, wrap(op, err, inv.DocumentNo)
	}

	records.Payments = append(records.Payments, p)
	ledger.Reconcile(records)

	if err := s.store.Save(ctx, records); err != nil {
		return nil, nil, wrap(op, err, inv.DocumentNo)
	}

	v := ledger.View(inv, records.Payments)
	log := logger.WithDocument("billing", inv.DocumentNo)
	log.Info().
		Str("payment_id", p.ID).
		Str("amount", money.Plain(p.Amount)).
		Str("pending", money.Plain(v.Pending)).
		Str("status", string(v.Status)).
		Msg("payment recorded")

	return &p, &v, nil
}

// MarkComplete force-completes a pending invoice. The manual status is never
// downgraded afterwards.
func (s *Service) MarkComplete(ctx context.Context, ref string) (*models.Document, error) {
	const op = "MarkComplete"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, wrap(op, err, "")
	}
	inv, kind, _ := find(records, ref)
	if inv == nil {
		return nil, wrap(op, ErrNotFound, ref)
	}
	if kind != models.KindFinalBill {
		return nil, wrap(op, ErrNotInvoice, inv.DocumentNo)
	}
	if inv.Status != models.StatusPending {
		return nil, wrap(op, fmt.Errorf("%w: %s is %s", ledger.ErrNotPending, inv.DocumentNo, inv.Status), "")
	}

	inv.Status = models.StatusManual
	if err := s.store.Save(ctx, records); err != nil {
		return nil, wrap(op, err, inv.DocumentNo)
	}

	log := logger.WithDocument("billing", inv.DocumentNo)
	log.Info().Msg("invoice marked complete manually")

	out := inv.Clone()
	return &out, nil
}

// ConvertQuotation loads a quotation into a new FINAL BILL draft dated today.
// The quotation itself is kept.
func (s *Service) ConvertQuotation(ctx context.Context, ref string) (*Draft, error) {
	const op = "ConvertQuotation"

	q, err := s.quotation(ctx, op, ref)
	if err != nil {
		return nil, err
	}
	d := DraftFrom(q, models.KindFinalBill)
	d.Date = timeutil.FormatDate(s.today())
	return d, nil
}

// EditQuotation removes a quotation and returns its contents as a draft. The
// edited version receives a new number when finalized.
func (s *Service) EditQuotation(ctx context.Context, ref string) (*Draft, error) {
	const op = "EditQuotation"

	q, err := s.removeQuotation(ctx, op, ref)
	if err != nil {
		return nil, err
	}
	return DraftFrom(q, models.KindQuotation), nil
}

// DeleteQuotation removes a quotation.
func (s *Service) DeleteQuotation(ctx context.Context, ref string) (*models.Document, error) {
	return s.removeQuotation(ctx, "DeleteQuotation", ref)
}

func (s *Service) quotation(ctx context.Context, op, ref string) (*models.Document, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, wrap(op, err, "")
	}
	doc, kind, _ := find(records, ref)
	if doc == nil {
		return nil, wrap(op, ErrNotFound, ref)
	}
	if kind != models.KindQuotation {
		return nil, wrap(op, ErrNotQuotation, doc.DocumentNo)
	}
	out := doc.Clone()
	return &out, nil
}

func (s *Service) removeQuotation(ctx context.Context, op, ref string) (*models.Document, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, wrap(op, err, "")
	}
	doc, kind, i := find(records, ref)
	if doc == nil {
		return nil, wrap(op, ErrNotFound, ref)
	}
	if kind != models.KindQuotation {
		return nil, wrap(op, ErrNotQuotation, doc.DocumentNo)
	}

	removed := doc.Clone()
	records.Quotations = append(records.Quotations[:i], records.Quotations[i+1:]...)
	if err := s.store.Save(ctx, records); err != nil {
		return nil, wrap(op, err, removed.DocumentNo)
	}

	log := logger.WithDocument("billing", removed.DocumentNo)
	log.Info().Str("op", op).Msg("quotation removed")

	return &removed, nil
}

// Artifact is a rendered file ready to be written out.
type Artifact struct {
	Name string
	Data []byte
}

// Render regenerates the stored document ref in format f.
func (s *Service) Render(ctx context.Context, ref string, f render.Format) (*Artifact, error) {
	const op = "Render"

	doc, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.renderDocument(op, doc, f)
}

// Preview renders d with the number it would receive if finalized now.
// Nothing is saved.
func (s *Service) Preview(ctx context.Context, d *Draft, f render.Format) (*Artifact, error) {
	const op = "Preview"

	number, err := s.NextNumber(ctx, d)
	if err != nil {
		return nil, err
	}
	doc := d.document("", number)
	return s.renderDocument(op, &doc, f)
}

func (s *Service) renderDocument(op string, doc *models.Document, f render.Format) (*Artifact, error) {
	r, err := render.ForFormat(f)
	if err != nil {
		return nil, wrap(op, err, doc.DocumentNo)
	}

	v := render.NewView(doc, money.ForDocument(doc), s.letterhead)
	data, err := r.Render(v)
	if err != nil {
		s.log.Error().Err(err).Str("document_no", doc.DocumentNo).Str("format", string(f)).Msg("render failed")
		return nil, wrap(op, err, doc.DocumentNo)
	}
	return &Artifact{Name: v.FileName(r.Format()), Data: data}, nil
}

// Receipt renders the PDF receipt of a recorded payment.
func (s *Service) Receipt(ctx context.Context, paymentID string) (*Artifact, error) {
	const op = "Receipt"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, wrap(op, err, "")
	}
	for _, p := range records.Payments {
		if p.ID != strings.TrimSpace(paymentID) {
			continue
		}
		data, err := render.Receipt(p, s.letterhead)
		if err != nil {
			return nil, wrap(op, err, p.ID)
		}
		return &Artifact{Name: fmt.Sprintf("Receipt_%s.pdf", p.Date), Data: data}, nil
	}
	return nil, wrap(op, ErrNotFound, paymentID)
}

// Summary computes the ledger summary for f.
func (s *Service) Summary(ctx context.Context, f ledger.Filter) (ledger.Summary, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(records, f), nil
}

// Clients returns the distinct invoice client names.
func (s *Service) Clients(ctx context.Context) ([]string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Clients(records), nil
}

// Export writes the invoices and payments matching filter. CSV holds one
// table, selected by payments; XLSX holds both as separate sheets.
func (s *Service) Export(ctx context.Context, w io.Writer, f export.Format, filter ledger.Filter, payments bool) error {
	const op = "Export"

	records, err := s.Records(ctx)
	if err != nil {
		return wrap(op, err, "")
	}

	switch f {
	case export.FormatCSV:
		table := export.Invoices(records, filter)
		if payments {
			table = export.Payments(records, filter)
		}
		return wrap(op, export.WriteCSV(w, table), "")
	case export.FormatXLSX:
		return wrap(op, export.WriteXLSX(w, export.Invoices(records, filter), export.Payments(records, filter)), "")
	default:
		return wrap(op, fmt.Errorf("%w: %q", export.ErrUnknownFormat, f), "")
	}
}
