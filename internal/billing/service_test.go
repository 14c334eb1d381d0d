package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"billing/internal/export"
	"billing/internal/ledger"
	"billing/internal/render"
	"billing/pkg/models"
)

// memStore keeps the snapshot in memory and counts saves.
type memStore struct {
	records *models.Records
	saves   int
}

func (m *memStore) Load(context.Context) (*models.Records, error) {
	if m.records == nil {
		return models.NewRecords(), nil
	}
	return m.records.Clone(), nil
}

func (m *memStore) Save(_ context.Context, r *models.Records) error {
	m.records = r.Clone()
	m.saves++
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService() (*Service, *memStore) {
	st := &memStore{}
	s := NewService(st, render.Letterhead{Name: "SN Associates", Signatory: "S. Nath"})
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.today = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return s, st
}

func testDraft(kind models.Kind) *Draft {
	d := NewDraft(kind, "18%", "")
	d.Date = "2024-04-01"
	d.Client = models.Client{Name: "Ravi Sharma", Phone: "98100 00000"}
	d.Items = []models.LineItem{
		{Description: "Site Visit", Unit: "Job", Quantity: dec("1"), Rate: dec("1000")},
		{Description: "2D & 3D", Unit: "Job", Quantity: dec("1"), Rate: dec("1000")},
	}
	return d
}

func mustFinalize(t *testing.T, s *Service, d *Draft) *models.Document {
	t.Helper()
	doc, err := s.Finalize(context.Background(), d)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return doc
}

func TestFinalize_NumbersAndTotals(t *testing.T) {
	s, st := newTestService()

	first := mustFinalize(t, s, testDraft(models.KindFinalBill))
	if first.DocumentNo != "INV-2024-001" {
		t.Fatalf("number = %s, want INV-2024-001", first.DocumentNo)
	}
	if !first.Amount.Equal(dec("2360")) || !first.Tax.Equal(dec("360")) {
		t.Fatalf("totals = %s/%s, want 2360/360", first.Amount, first.Tax)
	}
	if first.Status != models.StatusPending {
		t.Fatalf("status = %s, want Pending", first.Status)
	}

	second := mustFinalize(t, s, testDraft(models.KindFinalBill))
	quote := mustFinalize(t, s, testDraft(models.KindQuotation))
	if second.DocumentNo != "INV-2024-002" || quote.DocumentNo != "QUOT-2024-001" {
		t.Fatalf("numbers = %s, %s", second.DocumentNo, quote.DocumentNo)
	}
	if quote.Status != "" {
		t.Fatalf("quotation should carry no status, got %s", quote.Status)
	}

	if st.saves != 3 || len(st.records.Invoices) != 2 || len(st.records.Quotations) != 1 {
		t.Fatalf("store has %d invoices, %d quotations after %d saves",
			len(st.records.Invoices), len(st.records.Quotations), st.saves)
	}
}

func TestFinalize_HiddenGST(t *testing.T) {
	s, _ := newTestService()
	d := testDraft(models.KindFinalBill)
	d.HideGST = true

	doc := mustFinalize(t, s, d)
	if !doc.Amount.Equal(dec("2000")) || !doc.Tax.IsZero() {
		t.Fatalf("totals = %s/%s, want 2000/0", doc.Amount, doc.Tax)
	}
}

func TestFinalize_DropsBlankScheduleRows(t *testing.T) {
	s, _ := newTestService()
	d := testDraft(models.KindQuotation)
	d.Schedule = []models.ScheduleRow{{Stage: "Advance", Amount: "30%"}, {Date: "2024-05-01"}}

	doc := mustFinalize(t, s, d)
	if len(doc.Schedule) != 1 || doc.Schedule[0].Stage != "Advance" {
		t.Fatalf("schedule = %+v", doc.Schedule)
	}
}

func TestFinalize_Rejections(t *testing.T) {
	s, st := newTestService()

	empty := testDraft(models.KindFinalBill)
	empty.ClearItems()
	if _, err := s.Finalize(context.Background(), empty); !errors.Is(err, ErrEmptyDraft) {
		t.Fatalf("error = %v, want ErrEmptyDraft", err)
	}

	noClient := testDraft(models.KindFinalBill)
	noClient.Client.Name = "  "
	_, err := s.Finalize(context.Background(), noClient)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "client.name" {
		t.Fatalf("error = %v, want validation error on client.name", err)
	}

	negative := testDraft(models.KindFinalBill)
	negative.Items[0].Rate = dec("-1")
	if _, err := s.Finalize(context.Background(), negative); !errors.As(err, &verr) {
		t.Fatalf("error = %v, want validation error", err)
	}

	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != "Finalize" {
		t.Fatalf("error %v is not an OpError for Finalize", err)
	}

	if st.saves != 0 {
		t.Fatalf("rejected drafts were saved %d times", st.saves)
	}
}

func TestRecordPayment_PartialThenFull(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))

	p, view, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.DocumentNo, Amount: dec("1000"), Mode: models.ModeUPI})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if p.Date != "2024-06-15" || p.ClientName != "Ravi Sharma" || p.InvoiceDate != "2024-04-01" || p.InvoiceID != inv.ID {
		t.Fatalf("payment = %+v", p)
	}
	if view.Status != models.StatusPending || !view.Pending.Equal(dec("1360")) {
		t.Fatalf("after 1000: %s pending %s", view.Status, view.Pending)
	}

	saves := st.saves
	_, _, err = s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("1360.01"), Mode: models.ModeCash})
	if !errors.Is(err, ledger.ErrOverpayment) {
		t.Fatalf("error = %v, want ErrOverpayment", err)
	}
	if st.saves != saves || len(st.records.Payments) != 1 {
		t.Fatal("rejected payment changed the ledger")
	}

	_, view, err = s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("1360"), Date: "2024-06-20", Mode: models.ModeCheque})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if view.Status != models.StatusCompleted || !view.Pending.IsZero() {
		t.Fatalf("after full payment: %s pending %s", view.Status, view.Pending)
	}
	if st.records.Invoices[0].Status != models.StatusCompleted {
		t.Fatalf("stored status = %s, want Completed", st.records.Invoices[0].Status)
	}

	_, _, err = s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("1"), Mode: models.ModeCash})
	if !errors.Is(err, ledger.ErrNotPending) {
		t.Fatalf("error = %v, want ErrNotPending", err)
	}
}

func TestRecordPayment_Rejections(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))
	quote := mustFinalize(t, s, testDraft(models.KindQuotation))

	tests := []struct {
		name    string
		req     PaymentRequest
		wantErr error
	}{
		{"unknown invoice", PaymentRequest{Invoice: "INV-2024-999", Amount: dec("1"), Mode: models.ModeUPI}, ErrNotFound},
		{"quotation", PaymentRequest{Invoice: quote.DocumentNo, Amount: dec("1"), Mode: models.ModeUPI}, ledger.ErrNotInvoice},
		{"zero", PaymentRequest{Invoice: inv.ID, Amount: dec("0"), Mode: models.ModeUPI}, ledger.ErrNonPositiveAmount},
		{"negative", PaymentRequest{Invoice: inv.ID, Amount: dec("-10"), Mode: models.ModeUPI}, ledger.ErrNonPositiveAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.RecordPayment(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	_, _, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("10"), Mode: "Barter"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "mode" {
		t.Fatalf("error = %v, want validation error on mode", err)
	}
}

func TestMarkComplete(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))

	if _, _, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("100"), Mode: models.ModeUPI}); err != nil {
		t.Fatal(err)
	}

	doc, err := s.MarkComplete(ctx, inv.DocumentNo)
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if doc.Status != models.StatusManual || st.records.Invoices[0].Status != models.StatusManual {
		t.Fatalf("status = %s, want manual", doc.Status)
	}

	if _, _, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("100"), Mode: models.ModeUPI}); !errors.Is(err, ledger.ErrNotPending) {
		t.Fatalf("payment on manual invoice: %v, want ErrNotPending", err)
	}

	view, err := s.Invoice(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != models.StatusManual || !view.Pending.Equal(dec("2260")) {
		t.Fatalf("view = %s pending %s", view.Status, view.Pending)
	}

	if _, err := s.MarkComplete(ctx, inv.ID); !errors.Is(err, ledger.ErrNotPending) {
		t.Fatalf("second MarkComplete: %v, want ErrNotPending", err)
	}
}

func TestRecords_RederivesStaleStatus(t *testing.T) {
	s, st := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))
	st.records.Invoices[0].Status = models.StatusCompleted

	views, err := s.Invoices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if views[0].Invoice.ID != inv.ID || views[0].Status != models.StatusPending {
		t.Fatalf("status = %s, want Pending", views[0].Status)
	}
}

func TestQuotationWorkflow(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService()
	q1 := mustFinalize(t, s, testDraft(models.KindQuotation))
	q2 := mustFinalize(t, s, testDraft(models.KindQuotation))

	// Convert keeps the quotation and produces a bill draft.
	d, err := s.ConvertQuotation(ctx, q1.DocumentNo)
	if err != nil {
		t.Fatalf("ConvertQuotation: %v", err)
	}
	if d.Kind != models.KindFinalBill || d.Date != "2024-06-15" || len(d.Items) != 2 || d.Client.Name != "Ravi Sharma" {
		t.Fatalf("converted draft = %+v", d)
	}
	bill := mustFinalize(t, s, d)
	if bill.DocumentNo != "INV-2024-001" || len(st.records.Quotations) != 2 {
		t.Fatalf("bill %s, %d quotations left", bill.DocumentNo, len(st.records.Quotations))
	}

	// Edit removes the old quotation; the revision gets a fresh number.
	d, err = s.EditQuotation(ctx, q1.ID)
	if err != nil {
		t.Fatalf("EditQuotation: %v", err)
	}
	if d.Kind != models.KindQuotation || len(st.records.Quotations) != 1 {
		t.Fatalf("edit left %d quotations, draft kind %s", len(st.records.Quotations), d.Kind)
	}
	d.Items[0].Rate = dec("1500")
	revised := mustFinalize(t, s, d)
	if revised.DocumentNo != "QUOT-2024-003" || !revised.Amount.Equal(dec("2950")) {
		t.Fatalf("revised = %s amount %s", revised.DocumentNo, revised.Amount)
	}

	if _, err := s.DeleteQuotation(ctx, q2.DocumentNo); err != nil {
		t.Fatalf("DeleteQuotation: %v", err)
	}
	if len(st.records.Quotations) != 1 || st.records.Quotations[0].ID != revised.ID {
		t.Fatalf("quotations after delete: %+v", st.records.Quotations)
	}

	if _, err := s.DeleteQuotation(ctx, bill.DocumentNo); !errors.Is(err, ErrNotQuotation) {
		t.Fatalf("deleting a bill: %v, want ErrNotQuotation", err)
	}
	if _, err := s.EditQuotation(ctx, "QUOT-2024-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("editing a missing quotation: %v, want ErrNotFound", err)
	}
}

func TestRenderAndReceipt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))
	p, _, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("500"), Date: "2024-04-05", Mode: models.ModeUPI})
	if err != nil {
		t.Fatal(err)
	}

	art, err := s.Render(ctx, inv.DocumentNo, render.FormatHTML)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if art.Name != "Ravi Sharma Bill.html" || !bytes.Contains(art.Data, []byte("Rs. 2,360.00")) {
		t.Fatalf("artifact %s missing the grand total", art.Name)
	}

	if _, err := s.Render(ctx, inv.DocumentNo, "odt"); !errors.Is(err, render.ErrUnknownFormat) {
		t.Fatalf("error = %v, want ErrUnknownFormat", err)
	}

	rec, err := s.Receipt(ctx, p.ID)
	if err != nil {
		t.Fatalf("Receipt: %v", err)
	}
	if rec.Name != "Receipt_2024-04-05.pdf" || !bytes.HasPrefix(rec.Data, []byte("%PDF-")) {
		t.Fatalf("receipt %s is not a PDF", rec.Name)
	}
	if _, err := s.Receipt(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPreview_DoesNotSave(t *testing.T) {
	s, st := newTestService()
	mustFinalize(t, s, testDraft(models.KindFinalBill))
	saves := st.saves

	art, err := s.Preview(context.Background(), testDraft(models.KindFinalBill), render.FormatHTML)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(string(art.Data), "INV-2024-002") {
		t.Fatal("preview does not show the next number")
	}
	if st.saves != saves {
		t.Fatal("preview saved the draft")
	}
}

func TestSummaryAndExport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()
	inv := mustFinalize(t, s, testDraft(models.KindFinalBill))
	if _, _, err := s.RecordPayment(ctx, PaymentRequest{Invoice: inv.ID, Amount: dec("360"), Date: "2024-04-02", Mode: models.ModeUPI}); err != nil {
		t.Fatal(err)
	}

	sum, err := s.Summary(ctx, ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Billed.Equal(dec("2360")) || !sum.Revenue.Equal(dec("360")) || !sum.PendingDues.Equal(dec("2000")) || !sum.GSTLiability.Equal(dec("360")) {
		t.Fatalf("summary = %+v", sum)
	}

	var buf bytes.Buffer
	if err := s.Export(ctx, &buf, export.FormatCSV, ledger.Filter{}, true); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "S.No.,Payment ID,Date,Client,Amount,Mode,Invoice ID,Invoice Date\n") {
		t.Fatalf("csv = %q", buf.String())
	}
}

func TestDraft_Items(t *testing.T) {
	d := NewDraft(models.KindQuotation, "", "")
	if d.GSTRate != "18%" || d.Terms != models.DefaultTerms {
		t.Fatalf("defaults = %q %q", d.GSTRate, d.Terms)
	}

	if err := d.AddItem(models.LineItem{Description: " Supply ", Unit: "Nos", Quantity: dec("2"), Rate: dec("50")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if d.Items[0].Description != "Supply" {
		t.Fatalf("description not trimmed: %q", d.Items[0].Description)
	}

	var verr *models.ValidationError
	if err := d.AddItem(models.LineItem{Description: "x", Unit: "Bags", Quantity: dec("1"), Rate: dec("1")}); !errors.As(err, &verr) || verr.Field != "unit" {
		t.Fatalf("error = %v, want validation error on unit", err)
	}
	if err := d.AddItem(models.LineItem{Description: "x", Unit: "Nos", Quantity: dec("-1"), Rate: dec("1")}); !errors.As(err, &verr) || verr.Field != "quantity" {
		t.Fatalf("error = %v, want validation error on quantity", err)
	}

	if !d.Totals().GrandTotal.Equal(dec("118")) {
		t.Fatalf("grand total = %s", d.Totals().GrandTotal)
	}
	if err := d.RemoveItem(3); !errors.Is(err, ErrItemIndex) {
		t.Fatalf("error = %v, want ErrItemIndex", err)
	}
	if err := d.RemoveItem(0); err != nil || len(d.Items) != 0 {
		t.Fatalf("RemoveItem: %v, %d items left", err, len(d.Items))
	}
}
