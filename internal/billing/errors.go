package billing

import (
	"errors"
	"fmt"
)

// Common billing errors
var (
	// ErrNotFound is returned when no document or payment matches a reference.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyDraft is returned when finalizing a draft without line items.
	ErrEmptyDraft = errors.New("draft has no line items")

	// ErrNotQuotation is returned when a quotation operation targets a bill.
	ErrNotQuotation = errors.New("document is not a quotation")

	// ErrNotInvoice is returned when a bill operation targets a quotation.
	ErrNotInvoice = errors.New("document is not a final bill")

	// ErrItemIndex is returned when a draft item index is out of range.
	ErrItemIndex = errors.New("item index out of range")
)

// OpError wraps a failed service operation.
type OpError struct {
	// Op is the operation that failed (e.g. "Finalize", "RecordPayment").
	Op string

	// Err is the underlying error.
	Err error

	// Details identifies the record involved, if any.
	Details string
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("billing: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("billing: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is implements error matching against the wrapped error.
func (e *OpError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrap returns err as an *OpError unless it is nil or already one.
func wrap(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}

	return &OpError{Op: op, Err: err, Details: details}
}
