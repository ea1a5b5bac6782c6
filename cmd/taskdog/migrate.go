package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdog/taskdog/internal/config"
	"github.com/taskdog/taskdog/internal/repository/migrations"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the configured storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cfg.Storage == config.StorageMemory {
				cmd.Println("storage driver is memory, nothing to migrate")
				return nil
			}

			db, err := migrationsDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			switch cfg.Storage {
			case config.StorageSQLite:
				err = migrations.RunSQLite(db)
			case config.StoragePostgres:
				err = migrations.RunPostgres(db)
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}
