package main

import (
	"fmt"

	"shiftbot/internal/config"
	"shiftbot/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage != config.StoragePostgres {
				return fmt.Errorf("migrate requires STORAGE=%s", config.StoragePostgres)
			}

			db, err := database.Open(cmd.Context(), database.DSN(a.cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			if !statusOnly {
				if err := database.MigrateDB(db); err != nil {
					return fmt.Errorf("failed to migrate: %w", err)
				}
			}

			v, err := database.MigrationStatus(db)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			a.logger.WithField("version", v).Info("Database schema is up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "only print the current schema version")
	return cmd
}
