package cmd

import (
	"github.com/spf13/cobra"

	"billing/internal/logger"
)

var renderCmd = &cobra.Command{
	Use:   "render REF",
	Short: "Regenerate a stored quotation or invoice",
	Long: `Render a stored document again from its saved record. Totals are
recomputed from the stored line items with the same calculator used when it
was created, so the output matches the original.

Example:
  billing render INV-2024-001 --format pdf,docx,html --out ./bills`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringSliceP("format", "f", []string{"pdf"}, "Output formats: pdf, docx, html")
	renderCmd.Flags().StringP("out", "o", ".", "Output directory")
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")

	formats, _ := cmd.Flags().GetStringSlice("format")
	outDir, _ := cmd.Flags().GetString("out")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	return renderFormats(ctx, cmd, svc, args[0], formats, outDir, log)
}
