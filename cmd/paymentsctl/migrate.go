package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prashanttechie/portfolio-project/internal/database"
)

func migrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the service tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd, "driver", "DB_DRIVER")
			bindEnv(v, cmd, "dsn", "DB_DSN")
			driver := v.GetString("DB_DRIVER")
			if driver == "" {
				driver = "mysql"
			}
			dsn := v.GetString("DB_DSN")
			if dsn == "" {
				return fmt.Errorf("DB_DSN is required")
			}

			db, err := database.Open(driver, dsn)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables on %s\n", len(database.Models()), driver)
			return nil
		},
	}

	cmd.Flags().String("driver", "", "database driver: mysql|sqlite (default $DB_DRIVER)")
	cmd.Flags().String("dsn", "", "database DSN (default $DB_DSN)")
	return cmd
}
