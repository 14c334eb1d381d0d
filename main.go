package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"billing/cmd"
	"billing/internal/config"
	"billing/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		// Commands that need the store report the missing configuration
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		cfg = nil
	} else if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting billing CLI")

	cmd.Execute(cfg)

	log.Debug().Msg("Billing CLI shutdown")
	os.Exit(0)
}
