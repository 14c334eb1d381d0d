package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"billing/internal/ledger"
	"billing/internal/money"
	"billing/internal/render"
	"billing/pkg/models"
	"billing/pkg/services"
)

func rupees(d decimal.Decimal) string {
	return money.Rupees(d)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// printDocument prints the header and totals of a stored document.
func printDocument(doc *models.Document) {
	t := money.ForDocument(doc)

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%s %s\n", doc.Kind.Title(), doc.DocumentNo)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Date:    %s\n", doc.Date)
	fmt.Printf("Client:  %s\n", doc.Client.Name)
	if doc.Client.Phone != "" {
		fmt.Printf("Phone:   %s\n", doc.Client.Phone)
	}
	if doc.Client.Address != "" {
		fmt.Printf("Address: %s\n", doc.Client.Address)
	}
	fmt.Println()

	w := newTable()
	fmt.Fprintln(w, "#\tDESCRIPTION\tQTY\tRATE\tAMOUNT")
	for i, it := range doc.Items {
		fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\t%s\n", i+1, it.Description, it.Quantity.String(), it.Unit,
			money.Format(it.Rate), money.Format(it.Amount()))
	}
	w.Flush()
	fmt.Println()

	fmt.Printf("Subtotal:    %s\n", rupees(t.Subtotal))
	if !doc.HideGST {
		fmt.Printf("GST (%s):   %s\n", doc.GSTRate, rupees(t.Tax))
	}
	fmt.Printf("Grand Total: %s\n", rupees(t.GrandTotal))
	fmt.Printf("In words:    %s\n", money.WordsOrFallback(t.GrandTotal))
	if doc.Status != "" {
		fmt.Printf("Status:      %s\n", doc.Status)
	}
}

// printInvoice prints an invoice with its ledger figures and payments.
func printInvoice(v *ledger.InvoiceView) {
	printDocument(&v.Invoice)
	fmt.Printf("Paid:        %s\n", rupees(v.Paid))
	fmt.Printf("Pending:     %s\n", rupees(v.Pending))
	fmt.Printf("Derived:     %s\n", v.Status)

	if len(v.Payments) == 0 {
		return
	}
	fmt.Println()
	w := newTable()
	fmt.Fprintln(w, "PAYMENT ID\tDATE\tMODE\tAMOUNT")
	for _, p := range v.Payments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Date, p.Mode, money.Format(p.Amount))
	}
	w.Flush()
}

// renderFormats renders the stored document ref in each format under outDir.
func renderFormats(ctx context.Context, cmd *cobra.Command, svc services.BillingService, ref string, formats []string, outDir string, log zerolog.Logger) error {
	for _, f := range formats {
		art, err := svc.Render(ctx, ref, render.Format(strings.TrimSpace(f)))
		if err != nil {
			return handleBillingError(err, log)
		}
		path, err := writeArtifact(outDir, art)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Written %s\n", path)
	}
	return nil
}
