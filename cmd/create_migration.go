package cmd

import (
	"github.com/spf13/cobra"
	"github.com/umakantv/go-utils/db/migrations"
)

var (
	migrationName string
	migrationDir  string
)

var createMigrationCmd = &cobra.Command{
	Use:   "create-migration",
	Short: "Create an empty timestamped migration file",
	Run: func(cmd *cobra.Command, args []string) {
		migrations.CreateMigration(&migrationName, &migrationDir)
	},
}

func init() {
	createMigrationCmd.Flags().StringVar(&migrationName, "name", "", "Migration name (alphanum+underscore only)")
	createMigrationCmd.Flags().StringVar(&migrationDir, "dir", "./database/migrations", "Target directory for the new .sql file")
}
