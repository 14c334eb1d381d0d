package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"billing/internal/logger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show revenue, GST liability and pending dues",
	Long: `Summarize the ledger. Billed amount, revenue and GST liability honor
the --from/--to period and --client filter; pending dues always cover every
invoice and payment.

Examples:
  billing ledger --from 2024-04-01 --to 2025-03-31
  billing ledger --client "Ravi Sharma"
  billing ledger --clients`,
	Args: cobra.NoArgs,
	RunE: runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().String("from", "", "Period start YYYY-MM-DD (inclusive)")
	ledgerCmd.Flags().String("to", "", "Period end YYYY-MM-DD (inclusive)")
	ledgerCmd.Flags().String("client", "", "Only this client")
	ledgerCmd.Flags().Bool("clients", false, "List the distinct invoice clients and exit")
}

func runLedger(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ledger")

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	client, _ := cmd.Flags().GetString("client")
	filter, err := parseFilter(from, to, client)
	if err != nil {
		return err
	}

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	if listClients, _ := cmd.Flags().GetBool("clients"); listClients {
		names, err := svc.Clients(ctx)
		if err != nil {
			return handleBillingError(err, log)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	s, err := svc.Summary(ctx, filter)
	if err != nil {
		return handleBillingError(err, log)
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                  LEDGER SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Period:        %s to %s\n", orAll(from, "start"), orAll(to, "today"))
	fmt.Printf("Client:        %s\n", orAll(filter.Client, "all clients"))
	fmt.Println()
	fmt.Printf("Invoices:      %d\n", s.InvoiceCount)
	fmt.Printf("Billed:        %s\n", rupees(s.Billed))
	fmt.Printf("Payments:      %d\n", s.PaymentCount)
	fmt.Printf("Revenue:       %s\n", rupees(s.Revenue))
	fmt.Printf("GST liability: %s\n", rupees(s.GSTLiability))
	fmt.Printf("Pending dues:  %s\n", rupees(s.PendingDues))
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

func orAll(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
