// Package store persists the billing record snapshot.
//
// Every implementation follows the same contract: Load returns the whole
// snapshot, Save replaces it. There is no locking; the tool assumes exactly one
// writer process.
package store

import (
	"context"
	"errors"
	"fmt"

	"billing/pkg/models"
)

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrNilRecords is returned when Save is called without a snapshot.
	ErrNilRecords = errors.New("nil records snapshot")
)

// Store loads and saves the full record snapshot.
type Store interface {
	// Load returns the stored snapshot. A missing or unreadable backing file
	// yields an empty snapshot rather than an error.
	Load(ctx context.Context) (*models.Records, error)

	// Save replaces the stored snapshot with records.
	Save(ctx context.Context, records *models.Records) error
}

// Open returns the store for driver ("json" or "sqlite") backed by path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "json":
		return NewJSONStore(path), nil
	case "sqlite":
		return NewSQLStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// canonical returns a copy of records with nil collections replaced by empty
// ones so they serialize as [].
func canonical(records *models.Records) *models.Records {
	out := records.Clone()
	if out.Quotations == nil {
		out.Quotations = []models.Document{}
	}
	if out.Invoices == nil {
		out.Invoices = []models.Document{}
	}
	if out.Payments == nil {
		out.Payments = []models.Payment{}
	}
	return out
}
