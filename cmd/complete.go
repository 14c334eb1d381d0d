package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billing/internal/logger"
)

var completeCmd = &cobra.Command{
	Use:   "complete REF",
	Short: "Mark a pending invoice as completed manually",
	Long: `Force a pending invoice to "Completed (Manual)", for example when the
remaining balance was waived. The manual status is final: later payments are
refused and the status is never recomputed.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("complete")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	doc, err := svc.MarkComplete(ctx, args[0])
	if err != nil {
		return handleBillingError(err, log)
	}
	fmt.Printf("%s marked %s\n", doc.DocumentNo, doc.Status)
	return nil
}
