package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billing/internal/export"
	"billing/internal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices and payments as CSV or XLSX",
	Long: `Export the filtered ledger. XLSX files hold a "Bills" sheet and a
"Revenue" sheet; CSV holds invoices, or payments with --payments.

Examples:
  billing export --format xlsx --from 2024-04-01 --out ledger.xlsx
  billing export --format csv --payments --client "Ravi Sharma"`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", "csv", "Export format: csv or xlsx")
	exportCmd.Flags().Bool("payments", false, "Export payments instead of invoices (CSV only)")
	exportCmd.Flags().String("from", "", "Period start YYYY-MM-DD (inclusive)")
	exportCmd.Flags().String("to", "", "Period end YYYY-MM-DD (inclusive)")
	exportCmd.Flags().String("client", "", "Only this client")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout for csv, ledger.xlsx for xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return handleBillingError(err, log)
	}
	payments, _ := cmd.Flags().GetBool("payments")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	client, _ := cmd.Flags().GetString("client")
	filter, err := parseFilter(from, to, client)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" && format == export.FormatXLSX {
		outPath = "ledger.xlsx"
	}

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := svc.Export(ctx, out, format, filter, payments); err != nil {
		return handleBillingError(err, log)
	}
	if outPath != "" {
		fmt.Printf("Exported to %s\n", outPath)
	}
	return nil
}
