package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"billing/internal/ledger"
	"billing/pkg/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRecords() *models.Records {
	return &models.Records{
		Invoices: []models.Document{
			{
				ID: "a", DocumentNo: "INV-2024-001", Kind: models.KindFinalBill, Date: "2024-04-01",
				Client: models.Client{Name: "Ravi Sharma"},
				Items: []models.LineItem{
					{Description: "Site Visit", Unit: "Job", Quantity: dec("1"), Rate: dec("1000")},
					{Description: "2D & 3D", Unit: "Job", Quantity: dec("1"), Rate: dec("1000")},
				},
				GSTRate: "18%", Status: models.StatusPending, Amount: dec("2360"), Tax: dec("360"),
			},
			{
				ID: "b", DocumentNo: "INV-2024-002", Kind: models.KindFinalBill, Date: "2024-05-01",
				Client: models.Client{Name: "Meena Gupta"}, GSTRate: "0%",
				Status: models.StatusManual, Amount: dec("500"),
			},
		},
		Payments: []models.Payment{
			{ID: "p1", InvoiceID: "a", Amount: dec("1000"), Date: "2024-04-10", Mode: models.ModeCash, ClientName: "Ravi Sharma", InvoiceDate: "2024-04-01"},
		},
	}
}

func TestInvoices_Columns(t *testing.T) {
	table := Invoices(testRecords(), ledger.Filter{})

	if strings.Join(table.Header, "|") != "S.No.|Invoice No|Date|Client|Amount|Tax|Paid|Pending|Status|Items" {
		t.Fatalf("header = %v", table.Header)
	}
	if len(table.Numeric) != len(table.Header) {
		t.Fatalf("numeric flags do not cover every column")
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}

	want := []string{"1", "INV-2024-001", "2024-04-01", "Ravi Sharma", "2360.00", "360.00", "1000.00", "1360.00", "Pending", "Site Visit; 2D & 3D"}
	if strings.Join(table.Rows[0], "|") != strings.Join(want, "|") {
		t.Fatalf("row = %v, want %v", table.Rows[0], want)
	}
	if table.Rows[1][8] != string(models.StatusManual) {
		t.Fatalf("manual status not exported: %v", table.Rows[1])
	}
}

func TestInvoices_ClientFilter(t *testing.T) {
	table := Invoices(testRecords(), ledger.Filter{Client: "Meena Gupta"})
	if len(table.Rows) != 1 || table.Rows[0][1] != "INV-2024-002" || table.Rows[0][0] != "1" {
		t.Fatalf("rows = %v", table.Rows)
	}
}

func TestPayments_Columns(t *testing.T) {
	table := Payments(testRecords(), ledger.Filter{})
	if strings.Join(table.Header, "|") != "S.No.|Payment ID|Date|Client|Amount|Mode|Invoice ID|Invoice Date" {
		t.Fatalf("header = %v", table.Header)
	}
	want := "1|p1|2024-04-10|Ravi Sharma|1000.00|Cash|a|2024-04-01"
	if got := strings.Join(table.Rows[0], "|"); got != want {
		t.Fatalf("row = %s, want %s", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Invoices(testRecords(), ledger.Filter{})); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Invoice No" || rows[1][9] != "Site Visit; 2D & 3D" {
		t.Fatalf("unexpected csv: %v", rows)
	}
}

func TestWriteXLSX(t *testing.T) {
	records := testRecords()
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Invoices(records, ledger.Filter{}), Payments(records, ledger.Filter{}))
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != "Bills" || sheets[1] != "Revenue" {
		t.Fatalf("sheets = %v", sheets)
	}

	client, err := f.GetCellValue("Bills", "D2")
	if err != nil || client != "Ravi Sharma" {
		t.Fatalf("Bills!D2 = %q, %v", client, err)
	}
	mode, err := f.GetCellValue("Revenue", "F2")
	if err != nil || mode != "Cash" {
		t.Fatalf("Revenue!F2 = %q, %v", mode, err)
	}
	header, err := f.GetCellValue("Revenue", "H1")
	if err != nil || header != "Invoice Date" {
		t.Fatalf("Revenue!H1 = %q, %v", header, err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("ods"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("error = %v, want ErrUnknownFormat", err)
	}
}
