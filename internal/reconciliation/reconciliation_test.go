package reconciliation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"billing/internal/ledger"
	"billing/internal/timeutil"
	"billing/pkg/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1,23,456.50", want: "123456.5"},
		{in: "Rs. 500", want: "500"},
		{in: "₹ 500 Cr", want: "500"},
		{in: "(200.00)", want: "-200"},
		{in: "200.00 Dr", want: "-200"},
		{in: "-75", want: "-75"},
		{in: "", want: "0"},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q) = %s, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-06-01", "01/06/2024", "1/6/2024", "01-Jun-2024", "01.06.2024", "2024-06-01 10:15:00"} {
		got, err := parseDate(in)
		if err != nil {
			t.Errorf("parseDate(%q): %v", in, err)
			continue
		}
		if d := timeutil.FormatDate(got); d != "2024-06-01" {
			t.Errorf("parseDate(%q) = %s", in, d)
		}
	}

	for _, in := range []string{"", "31/02/2024", "June first"} {
		if _, err := parseDate(in); err == nil {
			t.Errorf("parseDate(%q) should fail", in)
		}
	}
}

func TestReadFile_CSVWithCreditDebitColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.csv")
	data := strings.Join([]string{
		`Txn Date,Narration,Ref No./Cheque No.,Withdrawal Amt.,Deposit Amt.,Closing Balance`,
		`01/06/2024,UPI-RAVI SHARMA,UTR123,,"2,360.00",5000.00`,
		`02/06/2024,ATM WDL,,500.00,,4500.00`,
		`not a date,BROKEN,,,10,1`,
		`,,,,,`,
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	txns, err := NewStatementReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2: %+v", len(txns), txns)
	}

	first := txns[0]
	if first.Row != 2 || first.Reference != "UTR123" || first.Description != "UPI-RAVI SHARMA" {
		t.Errorf("unexpected first transaction: %+v", first)
	}
	if !first.Amount.Equal(dec("2360")) || !first.IsIncoming() {
		t.Errorf("first amount = %s", first.Amount)
	}
	if !txns[1].Amount.Equal(dec("-500")) || txns[1].IsIncoming() {
		t.Errorf("second amount = %s", txns[1].Amount)
	}
}

func TestReadFile_XLSXWithPreamble(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Account statement for 00123"},
		{"Date", "Description", "Name", "Amount"},
		{"2024-06-03", "NEFT", "Meena Gupta", "1,000.00"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	txns, err := NewStatementReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txns))
	}
	if txns[0].CounterParty != "Meena Gupta" || !txns[0].Amount.Equal(dec("1000")) || txns[0].Row != 3 {
		t.Errorf("unexpected transaction: %+v", txns[0])
	}
}

func TestReadFile_Rejections(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewStatementReader().ReadFile(filepath.Join(dir, "statement.pdf")); err == nil {
		t.Error("expected error for unsupported extension")
	}

	path := filepath.Join(dir, "noheader.csv")
	if err := os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStatementReader().ReadFile(path); err == nil {
		t.Error("expected error for statement without date and amount columns")
	}
}

func invoiceView(no, client, amount string, payments ...models.Payment) ledger.InvoiceView {
	doc := models.Document{
		ID:         "id-" + no,
		DocumentNo: no,
		Kind:       models.KindFinalBill,
		Date:       "2024-05-01",
		Client:     models.Client{Name: client},
		Amount:     dec(amount),
		Status:     models.StatusPending,
	}
	for i := range payments {
		payments[i].InvoiceID = doc.ID
	}
	return ledger.View(&doc, payments)
}

func tx(date, text, amount string) BankTransaction {
	return BankTransaction{
		Date:        timeutil.ParseDateOrZero(date),
		Description: text,
		Amount:      dec(amount),
	}
}

func TestMatch(t *testing.T) {
	invoices := []ledger.InvoiceView{
		invoiceView("INV-2024-001", "Ravi Sharma", "2360"),
		invoiceView("INV-2024-002", "Meena Gupta", "1000"),
		invoiceView("INV-2024-003", "Ravi Sharma", "500"),
		invoiceView("INV-2024-004", "Kiran Rao", "300",
			models.Payment{ID: "p1", Amount: dec("300"), Date: "2024-06-01", Mode: models.ModeUPI}),
	}

	res := Match([]BankTransaction{
		tx("2024-06-01", "UPI/INV-2024-003/RAVI", "500"),
		tx("2024-06-02", "NEFT RAVI SHARMA", "2360"),
		tx("2024-06-03", "IMPS MEENA GUPTA", "400"),
		tx("2024-06-04", "IMPS MEENA GUPTA", "700"),
		tx("2024-06-05", "CASH DEPOSIT", "600"),
		tx("2024-06-06", "ATM WDL", "-100"),
		tx("2024-06-01", "UPI KIRAN RAO", "300"),
	}, invoices)

	want := []struct {
		invoice string
		basis   Basis
	}{
		{"INV-2024-003", BasisReference},
		{"INV-2024-001", BasisClientAmount},
		{"INV-2024-002", BasisClient},
		{"INV-2024-002", BasisAmount},
	}
	if len(res.Matches) != len(want) {
		t.Fatalf("got %d matches, want %d: %+v", len(res.Matches), len(want), res.Matches)
	}
	for i, w := range want {
		m := res.Matches[i]
		if m.Invoice.Invoice.DocumentNo != w.invoice || m.Basis != w.basis {
			t.Errorf("match %d = %s by %s, want %s by %s", i, m.Invoice.Invoice.DocumentNo, m.Basis, w.invoice, w.basis)
		}
	}

	if len(res.Unmatched) != 1 || !res.Unmatched[0].Amount.Equal(dec("700")) {
		t.Errorf("unexpected unmatched: %+v", res.Unmatched)
	}
	if res.Outgoing != 1 {
		t.Errorf("Outgoing = %d, want 1", res.Outgoing)
	}
	if len(res.Recorded) != 1 || res.Recorded[0].Invoice.Invoice.DocumentNo != "INV-2024-004" {
		t.Errorf("unexpected recorded: %+v", res.Recorded)
	}
}

func TestMatch_AmountOnlyIsAmbiguous(t *testing.T) {
	invoices := []ledger.InvoiceView{
		invoiceView("INV-2024-001", "Ravi Sharma", "500"),
		invoiceView("INV-2024-002", "Meena Gupta", "500"),
	}

	res := Match([]BankTransaction{tx("2024-06-01", "CASH DEPOSIT", "500")}, invoices)
	if len(res.Matches) != 0 || len(res.Unmatched) != 1 {
		t.Fatalf("ambiguous amount should stay unmatched: %+v", res)
	}
}
