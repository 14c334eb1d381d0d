package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"billing/internal/logger"
	"billing/internal/money"
	"billing/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list [REF]",
	Short: "List invoices or quotations, or show one record",
	Long: `List stored invoices with their paid and pending amounts and derived
status, or quotations with --quotations. With REF (id or document number)
the full document is shown, including payments for an invoice.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("quotations", "q", false, "List quotations instead of invoices")
	listCmd.Flags().String("status", "", "Only invoices with this status (pending or completed)")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	if len(args) == 1 {
		doc, err := svc.Find(ctx, args[0])
		if err != nil {
			return handleBillingError(err, log)
		}
		if doc.Kind != models.KindFinalBill {
			printDocument(doc)
			return nil
		}
		v, err := svc.Invoice(ctx, doc.ID)
		if err != nil {
			return handleBillingError(err, log)
		}
		printInvoice(v)
		return nil
	}

	if quotes, _ := cmd.Flags().GetBool("quotations"); quotes {
		docs, err := svc.Quotations(ctx)
		if err != nil {
			return handleBillingError(err, log)
		}
		if len(docs) == 0 {
			fmt.Println("No quotations stored.")
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "QUOTATION NO\tDATE\tCLIENT\tAMOUNT\tITEMS")
		for i := range docs {
			d := &docs[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.DocumentNo, d.Date, d.Client.Name, money.Format(d.Amount), d.ItemSummary())
		}
		return w.Flush()
	}

	status, _ := cmd.Flags().GetString("status")
	views, err := svc.Invoices(ctx)
	if err != nil {
		return handleBillingError(err, log)
	}

	w := newTable()
	fmt.Fprintln(w, "INVOICE NO\tDATE\tCLIENT\tAMOUNT\tPAID\tPENDING\tSTATUS")
	shown := 0
	for _, v := range views {
		if status != "" && !strings.HasPrefix(strings.ToLower(string(v.Status)), strings.ToLower(status)) {
			continue
		}
		shown++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", v.Invoice.DocumentNo, v.Invoice.Date, v.Invoice.Client.Name,
			money.Format(v.Invoice.Amount), money.Format(v.Paid), money.Format(v.Pending), v.Status)
	}
	if shown == 0 {
		fmt.Println("No invoices match.")
		return nil
	}
	return w.Flush()
}
