package main

import (
	"fmt"

	"shiftbot/internal/config"
	"shiftbot/internal/housekeeping"

	"github.com/spf13/cobra"
)

func newPurgeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete open shifts whose date is already past",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage != config.StoragePostgres {
				return fmt.Errorf("purge requires STORAGE=%s", config.StoragePostgres)
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			st, err := openStorage(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer st.close()

			purger := housekeeping.NewPurger(st.shifts, loc, a.cfg.PurgeInterval, a.logger)
			_, err = purger.PurgeOnce(cmd.Context())
			return err
		},
	}
}
