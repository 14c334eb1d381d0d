package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"billing/internal/billing"
	"billing/internal/logger"
	"billing/internal/render"
	"billing/pkg/models"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a quotation or final bill",
	Long: `Create a quotation or final bill, assign it the next number for its
kind and year, and optionally render it.

Line items are given as DESCRIPTION|UNIT|QTY|RATE. The description may join
work catalog labels and free text with "+" (see 'billing catalog').

Examples:
  billing new --kind quotation --client "Ravi Sharma" \
    --item "Site Visit+Architecture & Design|Job|1|15000" --gst 18% --format pdf

  billing new --draft edit.json --client "Ravi Sharma (revised)" --preview pdf

  billing new --client "Ravi Sharma" --item "Supply|Nos|4|2500" --save-draft draft.json`,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringP("kind", "k", "bill", "Document kind: bill or quotation")
	newCmd.Flags().String("date", "", "Document date YYYY-MM-DD (default today)")
	newCmd.Flags().StringP("client", "c", "", "Client name")
	newCmd.Flags().String("phone", "", "Client phone")
	newCmd.Flags().String("address", "", "Client address")
	newCmd.Flags().StringArrayP("item", "i", nil, "Line item DESCRIPTION|UNIT|QTY|RATE (repeatable)")
	newCmd.Flags().Bool("clear-items", false, "Drop the items loaded from --draft before adding --item")
	newCmd.Flags().String("gst", "", "GST rate key: 0%, 5%, 12% or 18%")
	newCmd.Flags().Bool("hide-gst", false, "Omit GST from the document")
	newCmd.Flags().StringArray("stage", nil, "Payment schedule row STAGE|AMOUNT|DATE (repeatable)")
	newCmd.Flags().String("terms", "", "Terms and conditions text")
	newCmd.Flags().String("terms-file", "", "Read terms and conditions from a file")
	newCmd.Flags().String("draft", "", "Start from a draft file written by 'quote convert/edit' or --save-draft")
	newCmd.Flags().String("save-draft", "", "Write the draft to this file instead of finalizing")
	newCmd.Flags().String("preview", "", "Render the unsaved draft in this format (pdf, docx, html) and exit")
	newCmd.Flags().StringSliceP("format", "f", nil, "Render the finalized document in these formats")
	newCmd.Flags().StringP("out", "o", ".", "Output directory for rendered files")
}

func runNew(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("new")

	draft, err := buildDraft(cmd)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save-draft"); path != "" {
		if err := billing.SaveDraft(path, draft); err != nil {
			return err
		}
		fmt.Printf("Draft saved to %s (%d items, total %s)\n", path, len(draft.Items), rupees(draft.Totals().GrandTotal))
		return nil
	}

	svc, closeStore, err := openService(log)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := commandContext(log)
	defer cancel()

	outDir, _ := cmd.Flags().GetString("out")

	if preview, _ := cmd.Flags().GetString("preview"); preview != "" {
		art, err := svc.Preview(ctx, draft, render.Format(preview))
		if err != nil {
			return handleBillingError(err, log)
		}
		path, err := writeArtifact(outDir, art)
		if err != nil {
			return err
		}
		fmt.Printf("Preview written to %s (not saved)\n", path)
		return nil
	}

	doc, err := svc.Finalize(ctx, draft)
	if err != nil {
		return handleBillingError(err, log)
	}
	printDocument(doc)

	formats, _ := cmd.Flags().GetStringSlice("format")
	return renderFormats(ctx, cmd, svc, doc.ID, formats, outDir, log)
}

// buildDraft loads --draft or starts a new draft, then applies the flags that
// were set on the command line.
func buildDraft(cmd *cobra.Command) (*billing.Draft, error) {
	flags := cmd.Flags()

	var draft *billing.Draft
	if path, _ := flags.GetString("draft"); path != "" {
		d, err := billing.LoadDraft(path)
		if err != nil {
			return nil, err
		}
		draft = d
	} else {
		kindFlag, _ := flags.GetString("kind")
		kind, err := parseKind(kindFlag)
		if err != nil {
			return nil, err
		}
		var gst, terms string
		if appConfig != nil {
			gst, terms = appConfig.DefaultGST, appConfig.DefaultTerms
		}
		draft = billing.NewDraft(kind, gst, terms)
	}

	if flags.Changed("kind") {
		kindFlag, _ := flags.GetString("kind")
		kind, err := parseKind(kindFlag)
		if err != nil {
			return nil, err
		}
		draft.Kind = kind
	}
	if flags.Changed("date") {
		draft.Date, _ = flags.GetString("date")
	}
	if flags.Changed("client") {
		draft.Client.Name, _ = flags.GetString("client")
	}
	if flags.Changed("phone") {
		draft.Client.Phone, _ = flags.GetString("phone")
	}
	if flags.Changed("address") {
		draft.Client.Address, _ = flags.GetString("address")
	}
	if flags.Changed("gst") {
		draft.GSTRate, _ = flags.GetString("gst")
	}
	if flags.Changed("hide-gst") {
		draft.HideGST, _ = flags.GetBool("hide-gst")
	}
	if flags.Changed("terms") {
		draft.Terms, _ = flags.GetString("terms")
	}
	if path, _ := flags.GetString("terms-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read terms file: %w", err)
		}
		draft.Terms = string(data)
	}

	if clearItems, _ := flags.GetBool("clear-items"); clearItems {
		draft.ClearItems()
	}
	items, _ := flags.GetStringArray("item")
	for _, raw := range items {
		item, err := parseItem(raw)
		if err != nil {
			return nil, err
		}
		if err := draft.AddItem(item); err != nil {
			return nil, fmt.Errorf("item %q rejected: %w", raw, err)
		}
	}

	if flags.Changed("stage") {
		stages, _ := flags.GetStringArray("stage")
		draft.Schedule = make([]models.ScheduleRow, 0, len(stages))
		for _, raw := range stages {
			draft.Schedule = append(draft.Schedule, parseStage(raw))
		}
	}

	return draft, nil
}
