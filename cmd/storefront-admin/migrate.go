package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmehra2102/chipstore/internal/database"
	"github.com/dmehra2102/chipstore/pkg/config"
	"github.com/dmehra2102/chipstore/pkg/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the profiles, orders and outbox tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	pool, err := pgxpool.New(cmd.Context(), cfg.PGURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(cmd.Context(), pool); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}
