package services

import (
	"context"
	"io"

	"billing/internal/billing"
	"billing/internal/export"
	"billing/internal/ledger"
	"billing/internal/render"
	"billing/pkg/models"
)

// BillingService defines the operations the command line drives
type BillingService interface {
	// Finalize assigns the next document number to a draft and stores it
	Finalize(ctx context.Context, d *billing.Draft) (*models.Document, error)

	// Preview renders a draft with the number it would receive, without saving
	Preview(ctx context.Context, d *billing.Draft, f render.Format) (*billing.Artifact, error)

	// Find looks up a quotation or invoice by id or document number
	Find(ctx context.Context, ref string) (*models.Document, error)

	// Quotations lists stored quotations
	Quotations(ctx context.Context) ([]models.Document, error)

	// Invoices lists invoices with paid, pending and derived status
	Invoices(ctx context.Context) ([]ledger.InvoiceView, error)

	// Invoice returns one invoice with its payments
	Invoice(ctx context.Context, ref string) (*ledger.InvoiceView, error)

	// RecordPayment appends a payment and re-derives the invoice status
	RecordPayment(ctx context.Context, req billing.PaymentRequest) (*models.Payment, *ledger.InvoiceView, error)

	// MarkComplete force-completes a pending invoice
	MarkComplete(ctx context.Context, ref string) (*models.Document, error)

	// ConvertQuotation loads a quotation into a bill draft
	ConvertQuotation(ctx context.Context, ref string) (*billing.Draft, error)

	// EditQuotation removes a quotation and returns it as a draft
	EditQuotation(ctx context.Context, ref string) (*billing.Draft, error)

	// DeleteQuotation removes a quotation
	DeleteQuotation(ctx context.Context, ref string) (*models.Document, error)

	// Render regenerates a stored document
	Render(ctx context.Context, ref string, f render.Format) (*billing.Artifact, error)

	// Receipt renders the receipt of a recorded payment
	Receipt(ctx context.Context, paymentID string) (*billing.Artifact, error)

	// Summary computes ledger totals for a filter
	Summary(ctx context.Context, f ledger.Filter) (ledger.Summary, error)

	// Clients lists distinct invoice client names
	Clients(ctx context.Context) ([]string, error)

	// Export writes filtered invoices and payments
	Export(ctx context.Context, w io.Writer, f export.Format, filter ledger.Filter, payments bool) error
}

// Compile-time check
var _ BillingService = (*billing.Service)(nil)
