package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billing/internal/billing"
	"billing/internal/config"
	"billing/internal/logger"
	"billing/internal/store"
	"billing/pkg/services"
)

var version = "1.0.0"

// Loaded configuration; nil when main could not load it.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing CLI - quotations, invoices and payment ledger",
	Long: `Billing CLI manages the quotations and final bills of a small
services business: it numbers and prices documents, renders them as PDF,
DOCX or HTML, records payments against invoices and reports revenue,
GST liability and pending dues.

Records are kept in a local JSON file or SQLite database configured through
billing.yaml or BILLING_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with cfg as the active configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")
	appConfig = cfg

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// openService opens the configured store and returns the billing service on
// top of it. The returned close function releases the store.
func openService(log zerolog.Logger) (services.BillingService, func(), error) {
	if appConfig == nil {
		return nil, nil, errors.New("configuration unavailable, check billing.yaml and BILLING_* variables")
	}

	st, err := store.Open(appConfig.StoreDriver, appConfig.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store at %s: %w", appConfig.StoreDriver, appConfig.StorePath, err)
	}
	log.Debug().
		Str("driver", appConfig.StoreDriver).
		Str("path", appConfig.StorePath).
		Msg("Store opened")

	closeFn := func() {
		if c, ok := st.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close store")
			}
		}
	}
	return billing.NewService(st, appConfig.Letterhead()), closeFn, nil
}

// commandContext returns a context canceled on interrupt or SIGTERM.
func commandContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
