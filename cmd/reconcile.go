package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"billing/internal/billing"
	"billing/internal/logger"
	"billing/internal/money"
	"billing/internal/reconciliation"
	"billing/internal/timeutil"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile STATEMENT",
	Short: "Match bank statement credits with pending invoices",
	Long: `Read a bank statement exported as CSV or XLSX and match its credits
with pending invoices, by invoice number in the narration, by client name, or
by an unambiguous pending amount.

Without --apply the proposed matches are only printed. With --apply each match
is recorded as a payment dated on the transaction date.`,
	Example: `  # Preview matches
  billing reconcile statement.csv

  # Record the matched payments
  billing reconcile statement.xlsx --apply --mode Transfer`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().Bool("apply", false, "Record the matched payments")
	reconcileCmd.Flags().StringP("mode", "m", "Transfer", "Payment mode for recorded payments")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")

	apply, _ := cmd.Flags().GetBool("apply")
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}

	txns, err := reconciliation.NewStatementReader().ReadFile(args[0])
	if err != nil {
		if errors.Is(err, reconciliation.ErrMissingColumns) {
			return fmt.Errorf("could not find the header row. The statement needs a date column and an amount or credit column")
		}
		return err
	}

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	invoices, err := svc.Invoices(ctx)
	if err != nil {
		return handleBillingError(err, log)
	}

	res := reconciliation.Match(txns, invoices)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         BANK RECONCILIATION")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Statement: %s\n", args[0])
	fmt.Printf("Transactions: %d (ignored debits: %d)\n", len(txns), res.Outgoing)
	if !apply {
		fmt.Println("Mode: Dry Run (use --apply to record payments)")
	}
	fmt.Println()

	if len(res.Matches) > 0 {
		w := newTable()
		fmt.Fprintln(w, "ROW\tDATE\tAMOUNT\tINVOICE\tCLIENT\tMATCHED BY\tNARRATION")
		for _, m := range res.Matches {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", m.Transaction.Row, timeutil.FormatDate(m.Transaction.Date),
				money.Format(m.Transaction.Amount), m.Invoice.Invoice.DocumentNo, m.Invoice.Invoice.Client.Name,
				m.Basis, m.Transaction.Description)
		}
		w.Flush()
		fmt.Println()
	}

	for _, m := range res.Recorded {
		fmt.Printf("Row %d already recorded against %s\n", m.Transaction.Row, m.Invoice.Invoice.DocumentNo)
	}
	for _, t := range res.Unmatched {
		fmt.Printf("Row %d unmatched: %s %s %s\n", t.Row, timeutil.FormatDate(t.Date), rupees(t.Amount), t.Description)
	}

	if !apply {
		return nil
	}

	recorded, failed := 0, 0
	for _, m := range res.Matches {
		p, v, err := svc.RecordPayment(ctx, billing.PaymentRequest{
			Invoice: m.Invoice.Invoice.ID,
			Amount:  m.Transaction.Amount,
			Date:    timeutil.FormatDate(m.Transaction.Date),
			Mode:    mode,
		})
		if err != nil {
			failed++
			fmt.Printf("[row %d] %s - failed (%v)\n", m.Transaction.Row, m.Invoice.Invoice.DocumentNo, handleBillingError(err, log))
			continue
		}
		recorded++
		fmt.Printf("[row %d] %s - recorded %s (%s, pending %s)\n", m.Transaction.Row, v.Invoice.DocumentNo,
			p.ID, v.Status, rupees(v.Pending))
	}

	fmt.Println()
	fmt.Printf("Recorded: %d\n", recorded)
	if failed > 0 {
		fmt.Printf("Failed: %d\n", failed)
	}
	fmt.Println(strings.Repeat("=", 80))
	return nil
}
