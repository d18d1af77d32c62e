package main

import (
	"fmt"

	"github.com/dom/qa-assessment/internal/config"
	"github.com/dom/qa-assessment/internal/logging"
	"github.com/dom/qa-assessment/internal/repository/postgres"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StoreBackend != config.StorePostgres {
		return fmt.Errorf("migrate requires STORE_BACKEND=%s", config.StorePostgres)
	}

	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	cmd.Println("Connecting to database...")
	db, err := postgres.NewConnection(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectRetries, log)
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
