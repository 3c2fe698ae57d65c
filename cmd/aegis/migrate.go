package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/PlayerIUnknown/aegis-gui/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Create the Postgres session store schema.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForMigrations()
		if err != nil {
			return err
		}

		applied, err := db.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if !applied {
			slog.Info("no changes to apply")
			return nil
		}

		slog.Info("migrations applied successfully")
		return nil
	},
}
