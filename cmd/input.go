package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"billing/internal/billing"
	"billing/internal/ledger"
	"billing/internal/timeutil"
	"billing/pkg/models"
)

// parseItem reads "DESCRIPTION|UNIT|QTY|RATE". DESCRIPTION may combine work
// catalog labels and free text with "+", e.g. "Site Visit+2D & 3D+Extra".
func parseItem(value string) (models.LineItem, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 4 {
		return models.LineItem{}, fmt.Errorf("item %q must be DESCRIPTION|UNIT|QTY|RATE", value)
	}

	unit, ok := lookupFold(models.Units, parts[1])
	if !ok {
		return models.LineItem{}, fmt.Errorf("item %q: unit must be one of %v", value, models.Units)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return models.LineItem{}, fmt.Errorf("item %q: invalid quantity: %w", value, err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
	if err != nil {
		return models.LineItem{}, fmt.Errorf("item %q: invalid rate: %w", value, err)
	}

	var catalog, custom []string
	for _, p := range strings.Split(parts[0], "+") {
		if label, ok := lookupFold(models.WorkCatalog, p); ok {
			catalog = append(catalog, label)
		} else if p = strings.TrimSpace(p); p != "" {
			custom = append(custom, p)
		}
	}

	return models.LineItem{
		Description: models.JoinDescription(catalog, strings.Join(custom, ", ")),
		Unit:        unit,
		Quantity:    qty,
		Rate:        rate,
	}, nil
}

// parseStage reads "STAGE|AMOUNT|DATE"; trailing fields may be omitted.
func parseStage(value string) models.ScheduleRow {
	parts := strings.SplitN(value, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return models.ScheduleRow{
		Stage:  strings.TrimSpace(parts[0]),
		Amount: strings.TrimSpace(parts[1]),
		Date:   strings.TrimSpace(parts[2]),
	}
}

// parseKind accepts "bill", "invoice", "quotation" or the stored kind names.
func parseKind(value string) (models.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bill", "invoice", "final", "final bill":
		return models.KindFinalBill, nil
	case "quote", "quotation":
		return models.KindQuotation, nil
	default:
		return "", fmt.Errorf("unknown document kind %q, use bill or quotation", value)
	}
}

// parseMode matches a payment mode case-insensitively.
func parseMode(value string) (models.PaymentMode, error) {
	for _, m := range models.PaymentModes {
		if strings.EqualFold(string(m), strings.TrimSpace(value)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payment mode %q, use one of %v", value, models.PaymentModes)
}

// parseFilter builds a ledger filter from optional YYYY-MM-DD bounds.
func parseFilter(from, to, client string) (ledger.Filter, error) {
	f := ledger.Filter{Client: strings.TrimSpace(client)}
	if from != "" {
		t, err := timeutil.ParseDate(from)
		if err != nil {
			return f, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		f.Period.From = t
	}
	if to != "" {
		t, err := timeutil.ParseDate(to)
		if err != nil {
			return f, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		f.Period.To = t
	}
	if !f.Period.From.IsZero() && !f.Period.To.IsZero() && f.Period.To.Before(f.Period.From) {
		return f, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return f, nil
}

// writeArtifact stores art under dir and returns the written path.
func writeArtifact(dir string, art *billing.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, art.Name)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func lookupFold(options []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, o := range options {
		if strings.EqualFold(o, value) {
			return o, true
		}
	}
	return "", false
}
