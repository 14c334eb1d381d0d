package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"billing/internal/billing"
	"billing/internal/export"
	"billing/internal/ledger"
	"billing/internal/render"
	"billing/internal/store"
	"billing/pkg/models"
)

// handleBillingError logs err and returns a message fit for the operator.
func handleBillingError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Billing operation failed")

	var validationErr *models.ValidationError

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid %s: %s (got %v)", validationErr.Field, validationErr.Message, validationErr.Value)
	case errors.Is(err, billing.ErrNotFound):
		return fmt.Errorf("no quotation, invoice or payment matches that reference. Use 'billing list' to see stored records")
	case errors.Is(err, billing.ErrEmptyDraft):
		return fmt.Errorf("the document has no line items. Add at least one with --item")
	case errors.Is(err, billing.ErrNotQuotation):
		return fmt.Errorf("that reference is a final bill, not a quotation")
	case errors.Is(err, billing.ErrNotInvoice), errors.Is(err, ledger.ErrNotInvoice):
		return fmt.Errorf("that reference is a quotation. Payments and completion apply to final bills only")
	case errors.Is(err, ledger.ErrNotPending):
		return fmt.Errorf("the invoice is already completed")
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		return fmt.Errorf("payment amount must be greater than zero")
	case errors.Is(err, ledger.ErrOverpayment):
		return fmt.Errorf("%w. Check the pending balance with 'billing list REF'", err)
	case errors.Is(err, render.ErrUnknownFormat):
		return fmt.Errorf("unsupported document format. Use one of %v", render.Formats)
	case errors.Is(err, render.ErrRenderFailed):
		return fmt.Errorf("document could not be rendered: %w", err)
	case errors.Is(err, export.ErrUnknownFormat):
		return fmt.Errorf("unsupported export format. Use csv or xlsx")
	case errors.Is(err, store.ErrUnknownDriver):
		return fmt.Errorf("unsupported store driver. Set BILLING_STORE_DRIVER to json or sqlite")
	default:
		return fmt.Errorf("billing operation failed: %w", err)
	}
}
