package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow-api/internal/infrastructure/config"
	"github.com/taskflow/taskflow-api/internal/infrastructure/db/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run postgres schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, postgres.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, postgres.Down)
	},
}

func runMigrate(cmd *cobra.Command, dir postgres.Direction) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations apply to the postgres store only (STORE_DRIVER=%s)", cfg.Store.Driver)
	}
	if err := postgres.Migrate(cfg.Postgres.URL, dir); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", dir)
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
