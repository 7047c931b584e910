// Command foodctl runs operator tasks against the food API database:
// seeding, registering OAuth clients, pricing items and minting dev tokens.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:          "foodctl",
		Short:        "Operator tooling for the food ordering API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "SQLite file, overrides DB_PATH")

	cmd.AddCommand(
		seedCmd(&opts),
		createClientCmd(&opts),
		priceCmd(&opts),
		tokenCmd(&opts),
	)
	return cmd
}
