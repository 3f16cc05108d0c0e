package main

import (
	"errors"

	"restaurant-crm-api/src/infrastructure/config"
	"restaurant-crm-api/src/infrastructure/repository/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerInstance, err := bootstrap(*flags)
			if err != nil {
				return err
			}
			defer syncLogger(loggerInstance)
			if cfg.Database.Driver == config.DriverMemory {
				return errors.New("the memory driver has no schema to migrate")
			}
			db, err := database.InitDB(cfg.Database, loggerInstance)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
