package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"billing/internal/money"
	"billing/pkg/models"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show work catalog, units, GST rates and payment modes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Work catalog (join with + in --item descriptions):")
		for _, w := range models.WorkCatalog {
			fmt.Printf("  %s\n", w)
		}
		fmt.Println()
		fmt.Printf("Units:         %s\n", strings.Join(models.Units, ", "))

		rates := money.GSTKeys()
		for i, k := range rates {
			if k == money.DefaultGSTKey {
				rates[i] = k + " (default)"
			}
		}
		fmt.Printf("GST rates:     %s\n", strings.Join(rates, ", "))

		modes := make([]string, len(models.PaymentModes))
		for i, m := range models.PaymentModes {
			modes[i] = string(m)
		}
		fmt.Printf("Payment modes: %s\n", strings.Join(modes, ", "))
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
