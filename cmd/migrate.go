package cmd

import (
	"fmt"

	"taskdo-service/config"
	"taskdo-service/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	Long:  `Apply every migration in the configured directory that has not run yet, then exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg, err := config.LoadDatabase(configPath)
		if err != nil {
			return err
		}
		dbConn, err := database.InitializeDatabase(dbCfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied from %s\n", dbCfg.MigrationsDir)
		return nil
	},
}
