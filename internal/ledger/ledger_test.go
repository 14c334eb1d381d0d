package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"billing/internal/money"
	"billing/internal/timeutil"
	"billing/pkg/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func invoice(id, amount string) models.Document {
	return models.Document{
		ID:         id,
		DocumentNo: "INV-2024-001",
		Kind:       models.KindFinalBill,
		Date:       "2024-04-01",
		Client:     models.Client{Name: "Ravi Sharma"},
		Amount:     dec(amount),
		Status:     models.StatusPending,
	}
}

func pay(invoiceID, amount, date string) models.Payment {
	return models.Payment{
		ID:         "pay-" + amount,
		InvoiceID:  invoiceID,
		Amount:     dec(amount),
		Date:       date,
		Mode:       models.ModeUPI,
		ClientName: "Ravi Sharma",
	}
}

func TestStatusFor_PartialThenFull(t *testing.T) {
	inv := invoice("inv-1", "2360.00")
	var payments []models.Payment

	steps := []struct {
		amount  string
		status  models.Status
		pending string
	}{
		{"1000", models.StatusPending, "1360.00"},
		{"1360", models.StatusCompleted, "0.00"},
	}
	for _, step := range steps {
		if err := CheckPayment(&inv, payments, dec(step.amount)); err != nil {
			t.Fatalf("CheckPayment(%s): %v", step.amount, err)
		}
		payments = append(payments, pay(inv.ID, step.amount, "2024-04-10"))

		if got := StatusFor(&inv, payments); got != step.status {
			t.Fatalf("after %s: status = %s, want %s", step.amount, got, step.status)
		}
		if got := money.Plain(Pending(&inv, payments)); got != step.pending {
			t.Fatalf("after %s: pending = %s, want %s", step.amount, got, step.pending)
		}
	}
}

func TestStatusFor_IgnoresOtherInvoices(t *testing.T) {
	inv := invoice("inv-1", "500")
	payments := []models.Payment{pay("inv-2", "500", "2024-04-10")}
	if got := StatusFor(&inv, payments); got != models.StatusPending {
		t.Fatalf("status = %s, want Pending", got)
	}
}

func TestStatusFor_ManualNeverDowngraded(t *testing.T) {
	inv := invoice("inv-1", "1000")
	inv.Status = models.StatusManual
	payments := []models.Payment{pay(inv.ID, "100", "2024-04-10")}

	if got := StatusFor(&inv, payments); got != models.StatusManual {
		t.Fatalf("status = %s, want manual", got)
	}

	records := &models.Records{Invoices: []models.Document{inv}, Payments: payments}
	if Reconcile(records) {
		t.Fatal("Reconcile reported a change for a manual invoice")
	}
	if records.Invoices[0].Status != models.StatusManual {
		t.Fatalf("manual status downgraded to %s", records.Invoices[0].Status)
	}
}

func TestStatusFor_StaleCompletedIsRederived(t *testing.T) {
	inv := invoice("inv-1", "1000")
	inv.Status = models.StatusCompleted

	records := &models.Records{Invoices: []models.Document{inv}}
	if !Reconcile(records) {
		t.Fatal("expected Reconcile to correct a stale Completed status")
	}
	if records.Invoices[0].Status != models.StatusPending {
		t.Fatalf("status = %s, want Pending", records.Invoices[0].Status)
	}
}

func TestCheckPayment_Rejections(t *testing.T) {
	inv := invoice("inv-1", "2360")
	payments := []models.Payment{pay(inv.ID, "1000", "2024-04-10")}

	manual := inv
	manual.Status = models.StatusManual
	quote := inv
	quote.Kind = models.KindQuotation

	tests := []struct {
		name    string
		inv     models.Document
		amount  string
		wantErr error
	}{
		{"overpayment", inv, "1360.01", ErrOverpayment},
		{"zero", inv, "0", ErrNonPositiveAmount},
		{"negative", inv, "-5", ErrNonPositiveAmount},
		{"exact balance", inv, "1360", nil},
		{"partial", inv, "0.01", nil},
		{"manual completed", manual, "10", ErrNotPending},
		{"quotation", quote, "10", ErrNotInvoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(payments)
			err := CheckPayment(&tt.inv, payments, dec(tt.amount))
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(payments) != before {
				t.Fatal("CheckPayment modified the ledger")
			}
		})
	}
}

func TestCheckPayment_CompletedInvoice(t *testing.T) {
	inv := invoice("inv-1", "500")
	payments := []models.Payment{pay(inv.ID, "500", "2024-04-10")}
	if err := CheckPayment(&inv, payments, dec("1")); !errors.Is(err, ErrNotPending) {
		t.Fatalf("error = %v, want ErrNotPending", err)
	}
}

func TestViews(t *testing.T) {
	a, b := invoice("a", "100"), invoice("b", "300")
	records := &models.Records{
		Invoices: []models.Document{a, b},
		Payments: []models.Payment{pay("b", "120", "2024-04-02"), pay("a", "100", "2024-04-03"), pay("b", "30", "2024-04-04")},
	}

	views := Views(records)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].Status != models.StatusCompleted || !views[0].Pending.IsZero() {
		t.Fatalf("unexpected view for a: %+v", views[0])
	}
	if views[1].Status != models.StatusPending || money.Plain(views[1].Paid) != "150.00" || len(views[1].Payments) != 2 {
		t.Fatalf("unexpected view for b: %+v", views[1])
	}
}

func TestSummarize(t *testing.T) {
	jan, jun := invoice("jan", "1180"), invoice("jun", "2360")
	jan.Date, jan.Tax = "2024-01-15", dec("180")
	jun.Date, jun.Tax = "2024-06-01", dec("360")
	jun.Client.Name = "Meena Gupta"
	bad := invoice("bad", "50")
	bad.Date = "not-a-date"

	records := &models.Records{
		Invoices: []models.Document{jan, jun, bad},
		Payments: []models.Payment{
			pay("jan", "1180", "2024-02-01"),
			pay("jun", "1000", "2024-06-05"),
		},
	}
	records.Payments[1].ClientName = "Meena Gupta"

	period := Period{
		From: mustDate(t, "2024-03-01"),
		To:   mustDate(t, "2024-12-31"),
	}
	s := Summarize(records, Filter{Period: period})

	if money.Plain(s.Billed) != "2360.00" || s.InvoiceCount != 1 {
		t.Fatalf("billed = %s (%d), want 2360.00 (1)", s.Billed, s.InvoiceCount)
	}
	if money.Plain(s.Revenue) != "1000.00" || s.PaymentCount != 1 {
		t.Fatalf("revenue = %s (%d), want 1000.00 (1)", s.Revenue, s.PaymentCount)
	}
	if money.Plain(s.GSTLiability) != "360.00" {
		t.Fatalf("gst = %s, want 360.00", s.GSTLiability)
	}
	if money.Plain(s.PendingDues) != "1410.00" {
		t.Fatalf("pending dues = %s, want 1410.00", s.PendingDues)
	}

	open := Summarize(records, Filter{})
	if open.InvoiceCount != 3 {
		t.Fatalf("open period should include unparsable dates, got %d invoices", open.InvoiceCount)
	}

	client := Summarize(records, Filter{Client: "Ravi Sharma"})
	if client.InvoiceCount != 2 || client.PaymentCount != 1 {
		t.Fatalf("client filter: %d invoices %d payments", client.InvoiceCount, client.PaymentCount)
	}
}

func TestClients(t *testing.T) {
	a, b, c := invoice("a", "1"), invoice("b", "1"), invoice("c", "1")
	b.Client.Name = "Anil"
	records := &models.Records{Invoices: []models.Document{a, b, c}}

	got := Clients(records)
	if len(got) != 2 || got[0] != "Anil" || got[1] != "Ravi Sharma" {
		t.Fatalf("Clients() = %v", got)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
