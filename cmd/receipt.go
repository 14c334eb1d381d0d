package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billing/internal/logger"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt PAYMENT_ID",
	Short: "Render the PDF receipt of a recorded payment",
	Long: `Render the receipt of a payment. Payment ids are listed by
'billing list INVOICE_NO'.`,
	Args: cobra.ExactArgs(1),
	RunE: runReceipt,
}

func init() {
	rootCmd.AddCommand(receiptCmd)

	receiptCmd.Flags().StringP("out", "o", ".", "Output directory")
}

func runReceipt(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("receipt")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	art, err := svc.Receipt(ctx, args[0])
	if err != nil {
		return handleBillingError(err, log)
	}
	outDir, _ := cmd.Flags().GetString("out")
	path, err := writeArtifact(outDir, art)
	if err != nil {
		return err
	}
	fmt.Printf("Receipt written to %s\n", path)
	return nil
}
