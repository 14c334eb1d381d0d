package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"billing/internal/billing"
	"billing/internal/logger"
	"billing/pkg/models"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Convert, edit or delete quotations",
	Long: `Work with stored quotations.

  convert  load a quotation into a new final bill dated today
  edit     remove a quotation and keep its contents as a draft file
  delete   remove a quotation

Drafts are finalized with 'billing new --draft FILE'.`,
}

var quoteConvertCmd = &cobra.Command{
	Use:   "convert REF",
	Short: "Turn a quotation into a final bill draft",
	Long: `Copy the client, items, GST settings, schedule and terms of a quotation
into a final bill draft dated today. The quotation is kept.

With --finalize the bill is created immediately; otherwise the draft is
written to --draft-out for review.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuoteConvert,
}

var quoteEditCmd = &cobra.Command{
	Use:   "edit REF",
	Short: "Remove a quotation and save it as a draft",
	Long: `Remove a quotation from the store and write its contents to a draft
file. Finalizing the draft with 'billing new --draft FILE' stores it under a
new quotation number.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuoteEdit,
}

var quoteDeleteCmd = &cobra.Command{
	Use:   "delete REF",
	Short: "Delete a quotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuoteDelete,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteConvertCmd, quoteEditCmd, quoteDeleteCmd)

	quoteConvertCmd.Flags().String("draft-out", "bill-draft.json", "Draft file to write")
	quoteConvertCmd.Flags().Bool("finalize", false, "Create the final bill immediately")
	quoteConvertCmd.Flags().StringSliceP("format", "f", nil, "Render the created bill in these formats (with --finalize)")
	quoteConvertCmd.Flags().StringP("out", "o", ".", "Output directory for rendered files")

	quoteEditCmd.Flags().String("draft-out", "quotation-draft.json", "Draft file to write")
}

func runQuoteConvert(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("quote")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	draft, err := svc.ConvertQuotation(ctx, args[0])
	if err != nil {
		return handleBillingError(err, log)
	}

	if finalize, _ := cmd.Flags().GetBool("finalize"); finalize {
		doc, err := svc.Finalize(ctx, draft)
		if err != nil {
			return handleBillingError(err, log)
		}
		printDocument(doc)

		formats, _ := cmd.Flags().GetStringSlice("format")
		outDir, _ := cmd.Flags().GetString("out")
		return renderFormats(ctx, cmd, svc, doc.ID, formats, outDir, log)
	}

	path, _ := cmd.Flags().GetString("draft-out")
	if err := billing.SaveDraft(path, draft); err != nil {
		return err
	}
	fmt.Printf("Bill draft for %s written to %s\n", draft.Client.Name, path)
	fmt.Printf("Finalize with: billing new --draft %s\n", path)
	return nil
}

func runQuoteEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("quote")
	path, _ := cmd.Flags().GetString("draft-out")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	// The draft file must exist before the quotation is removed.
	doc, err := svc.Find(ctx, args[0])
	if err != nil {
		return handleBillingError(err, log)
	}
	if doc.Kind != models.KindQuotation {
		return handleBillingError(billing.ErrNotQuotation, log)
	}
	if err := billing.SaveDraft(path, billing.DraftFrom(doc, models.KindQuotation)); err != nil {
		return err
	}

	draft, err := svc.EditQuotation(ctx, doc.ID)
	if err != nil {
		return handleBillingError(err, log)
	}
	if err := billing.SaveDraft(path, draft); err != nil {
		return err
	}

	fmt.Printf("%s removed; its contents are in %s\n", doc.DocumentNo, path)
	fmt.Printf("Save the revision with: billing new --draft %s\n", path)
	return nil
}

func runQuoteDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("quote")

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	doc, err := svc.DeleteQuotation(ctx, args[0])
	if err != nil {
		return handleBillingError(err, log)
	}
	fmt.Printf("Deleted %s (%s)\n", doc.DocumentNo, doc.Client.Name)
	return nil
}
