package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dynqr/redirector/internal/config"
	"dynqr/redirector/internal/model"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the qr_codes schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadApp()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Store.Backend != config.StoreBackendPostgres {
				return errPostgresRequired
			}
			db, err := config.NewPostgresDB(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer closeDB(db, logger)

			if err := model.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database migration completed")
			return nil
		},
	}
}
