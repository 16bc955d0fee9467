package main

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmehra2102/chipstore/internal/identity/application"
	identitypg "github.com/dmehra2102/chipstore/internal/identity/infrastructure/postgres"
	"github.com/dmehra2102/chipstore/pkg/config"
	"github.com/dmehra2102/chipstore/pkg/logging"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create or promote an administrator account",
	Long: `Creates a profile with the admin role. If the email already belongs
to a customer, the profile is promoted and its password replaced.`,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "administrator email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password (min 6 characters)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	if len(adminPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

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

	// Admin creation never opens a session.
	svc := application.NewService(log, identitypg.NewProfileRepository(log, pool), nil, cfg.SessionTTL)
	p, err := svc.CreateAdmin(cmd.Context(), adminEmail, adminPassword, adminName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", p.Email, p.ID)
	return nil
}
