package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"billing/internal/billing"
	"billing/internal/logger"
)

var payCmd = &cobra.Command{
	Use:   "pay REF",
	Short: "Record a payment against a pending invoice",
	Long: `Record a payment against a pending final bill. The amount must be
positive and no more than the pending balance. The invoice becomes Completed
once nothing is pending.

Example:
  billing pay INV-2024-001 --amount 1000 --mode UPI --receipt --out ./receipts`,
	Args: cobra.ExactArgs(1),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringP("amount", "a", "", "Amount received (required)")
	payCmd.Flags().String("date", "", "Payment date YYYY-MM-DD (default today)")
	payCmd.Flags().StringP("mode", "m", "UPI", "Payment mode: UPI, Cash, Cheque or Transfer")
	payCmd.Flags().Bool("receipt", false, "Render the PDF receipt of this payment")
	payCmd.Flags().StringP("out", "o", ".", "Output directory for the receipt")

	payCmd.MarkFlagRequired("amount")
}

func runPay(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("pay")

	amountFlag, _ := cmd.Flags().GetString("amount")
	amount, err := decimal.NewFromString(amountFlag)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", amountFlag, err)
	}
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}
	date, _ := cmd.Flags().GetString("date")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	p, v, err := svc.RecordPayment(ctx, billing.PaymentRequest{
		Invoice: args[0],
		Amount:  amount,
		Date:    date,
		Mode:    mode,
	})
	if err != nil {
		return handleBillingError(err, log)
	}

	fmt.Printf("Payment %s recorded: %s by %s on %s\n", p.ID, rupees(p.Amount), p.Mode, p.Date)
	fmt.Printf("%s  paid %s  pending %s  status %s\n", v.Invoice.DocumentNo, rupees(v.Paid), rupees(v.Pending), v.Status)

	if withReceipt, _ := cmd.Flags().GetBool("receipt"); withReceipt {
		art, err := svc.Receipt(ctx, p.ID)
		if err != nil {
			return handleBillingError(err, log)
		}
		outDir, _ := cmd.Flags().GetString("out")
		path, err := writeArtifact(outDir, art)
		if err != nil {
			return err
		}
		fmt.Printf("Receipt written to %s\n", path)
	}
	return nil
}
