// Package reconciliation matches bank statement credits against pending
// invoices so they can be recorded as payments.
package reconciliation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"billing/internal/logger"
	"billing/internal/timeutil"
)

var (
	// ErrUnsupportedStatement is returned for statement files that are
	// neither CSV nor XLSX.
	ErrUnsupportedStatement = errors.New("unsupported statement file, use .csv or .xlsx")

	// ErrMissingColumns is returned when no header row names a date and an
	// amount or credit column.
	ErrMissingColumns = errors.New("statement has no date and amount columns")
)

// column positions found in the header row; -1 when absent
type columns struct {
	date, description, counterParty, reference, amount, credit, debit int
}

// Header keywords, checked in this order for each header cell.
var headerAliases = []struct {
	field   string
	aliases []string
}{
	{"debit", []string{"debit", "withdrawal"}},
	{"credit", []string{"credit", "deposit"}},
	{"amount", []string{"amount", "amt"}},
	{"date", []string{"date"}},
	{"reference", []string{"reference", "ref", "utr", "cheque", "chq"}},
	{"counterparty", []string{"name", "payer", "counterparty", "sender"}},
	{"description", []string{"narration", "description", "particulars", "remarks", "details"}},
}

// Date layouts seen in Indian bank exports.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"02/01/06",
	"02-Jan-06",
}

// StatementReader reads bank statements exported as CSV or XLSX
type StatementReader struct {
	log zerolog.Logger
}

// NewStatementReader creates a new statement reader
func NewStatementReader() *StatementReader {
	return &StatementReader{
		log: logger.WithComponent("reconciliation-reader"),
	}
}

// ReadFile reads the statement at path. The first row naming a date and an
// amount (or credit) column is the header; malformed rows below it are
// skipped with a warning.
func (sr *StatementReader) ReadFile(path string) ([]BankTransaction, error) {
	const op = "ReadFile"

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnsupportedStatement, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	return sr.Parse(rows)
}

// Parse converts raw statement rows into transactions.
func (sr *StatementReader) Parse(rows [][]string) ([]BankTransaction, error) {
	const op = "Parse"

	headerAt := -1
	var cols columns
	for i, row := range rows {
		if c, ok := findColumns(row); ok {
			headerAt, cols = i, c
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingColumns)
	}

	var transactions []BankTransaction
	for i, row := range rows[headerAt+1:] {
		rowNum := headerAt + i + 2

		if isBlank(row) {
			continue
		}

		transaction, err := parseTransaction(row, rowNum, cols)
		if err != nil {
			sr.log.Warn().
				Err(err).
				Int("row", rowNum).
				Msg("Failed to parse bank transaction, skipping")
			continue
		}

		transactions = append(transactions, transaction)
	}

	sr.log.Info().
		Int("total_rows", len(rows)-headerAt-1).
		Int("parsed_transactions", len(transactions)).
		Msg("Bank statement read")

	return transactions, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

func findColumns(header []string) (columns, bool) {
	c := columns{-1, -1, -1, -1, -1, -1, -1}
	assigned := map[string]bool{}

	for i, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}
		for _, group := range headerAliases {
			if assigned[group.field] || !matchesAlias(h, group.aliases) {
				continue
			}
			assigned[group.field] = true
			switch group.field {
			case "debit":
				c.debit = i
			case "credit":
				c.credit = i
			case "amount":
				c.amount = i
			case "date":
				c.date = i
			case "reference":
				c.reference = i
			case "counterparty":
				c.counterParty = i
			case "description":
				c.description = i
			}
			break
		}
	}

	return c, c.date >= 0 && (c.amount >= 0 || c.credit >= 0)
}

// matchesAlias reports whether any alias is a word of h, or a prefix of one
// for aliases longer than three letters ("deposits", "withdrawals").
func matchesAlias(h string, aliases []string) bool {
	words := strings.FieldsFunc(h, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, a := range aliases {
		for _, w := range words {
			if w == a || (len(a) > 3 && strings.HasPrefix(w, a)) {
				return true
			}
		}
	}
	return false
}

func parseTransaction(row []string, rowNum int, c columns) (BankTransaction, error) {
	const op = "parseTransaction"

	dateStr := cell(row, c.date)
	date, err := parseDate(dateStr)
	if err != nil {
		return BankTransaction{}, fmt.Errorf("%s: invalid date '%s' in row %d: %w", op, dateStr, rowNum, err)
	}

	var amount decimal.Decimal
	if c.credit >= 0 {
		credit, err := parseAmount(cell(row, c.credit))
		if err != nil {
			return BankTransaction{}, fmt.Errorf("%s: invalid credit in row %d: %w", op, rowNum, err)
		}
		debit, err := parseAmount(cell(row, c.debit))
		if err != nil {
			return BankTransaction{}, fmt.Errorf("%s: invalid debit in row %d: %w", op, rowNum, err)
		}
		amount = credit.Abs().Sub(debit.Abs())
	} else {
		amount, err = parseAmount(cell(row, c.amount))
		if err != nil {
			return BankTransaction{}, fmt.Errorf("%s: invalid amount in row %d: %w", op, rowNum, err)
		}
	}

	return BankTransaction{
		Row:          rowNum,
		Date:         date,
		Description:  cell(row, c.description),
		CounterParty: cell(row, c.counterParty),
		Reference:    cell(row, c.reference),
		Amount:       amount,
	}, nil
}

// parseDate parses the date formats banks export, in IST.
func parseDate(dateStr string) (time.Time, error) {
	cleaned := strings.TrimSpace(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	// Some exports append a time of day
	if i := strings.IndexAny(cleaned, " T"); i == 10 {
		cleaned = cleaned[:i]
	}

	for _, layout := range dateLayouts {
		if date, err := time.ParseInLocation(layout, cleaned, timeutil.IST); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// parseAmount parses Indian formatted amounts: "1,23,456.50", "Rs. 500",
// "₹ 500 Cr", "(200.00)" and "200.00 Dr". Empty is zero.
func parseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}

	negative := false
	upper := strings.ToUpper(cleaned)
	switch {
	case strings.HasSuffix(upper, "DR"):
		negative = true
		cleaned = cleaned[:len(cleaned)-2]
	case strings.HasSuffix(upper, "CR"):
		cleaned = cleaned[:len(cleaned)-2]
	}
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}

	cleaned = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", ",", "", " ", "").Replace(cleaned)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", amountStr, cleaned)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// cell safely extracts a trimmed value from a row
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
