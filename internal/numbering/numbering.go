// Package numbering mints human-facing document numbers of the form
// PREFIX-YYYY-NNN. Quotations and invoices have independent sequences, and
// every sequence restarts each calendar year.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/pkg/models"
)

// Prefix returns the document number prefix for kind.
func Prefix(kind models.Kind) string {
	if kind == models.KindFinalBill {
		return "INV"
	}
	return "QUOT"
}

// Namespace returns the "PREFIX-YYYY-" key that numbers of kind and year share.
func Namespace(kind models.Kind, year int) string {
	return fmt.Sprintf("%s-%d-", Prefix(kind), year)
}

// Next returns the number following the highest sequence already used in the
// kind/year namespace among existing. Records of another kind and numbers that
// do not parse are ignored. The result is not reserved: persist the new record
// before calling Next again.
func Next(kind models.Kind, date time.Time, existing []models.Document) string {
	log := logger.WithComponent("numbering")
	ns := Namespace(kind, date.Year())

	maxSeq := 0
	for _, d := range existing {
		if d.Kind != kind || !strings.HasPrefix(d.DocumentNo, ns) {
			continue
		}
		seq, err := strconv.Atoi(d.DocumentNo[len(ns):])
		if err != nil || seq < 0 {
			log.Debug().
				Str("document_no", d.DocumentNo).
				Str("id", d.ID).
				Msg("Skipping unparsable document number")
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d", ns, maxSeq+1)
}

// Parse splits a well-formed document number into its parts.
func Parse(documentNo string) (prefix string, year, seq int, err error) {
	parts := strings.Split(documentNo, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed document number %q", documentNo)
	}
	if parts[0] != "INV" && parts[0] != "QUOT" {
		return "", 0, 0, fmt.Errorf("unknown prefix in document number %q", documentNo)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil {
		return "", 0, 0, fmt.Errorf("bad year in document number %q: %w", documentNo, err)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil {
		return "", 0, 0, fmt.Errorf("bad sequence in document number %q: %w", documentNo, err)
	}
	return parts[0], year, seq, nil
}
