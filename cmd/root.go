package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/umakantv/go-utils/logger"
)

// configPath is the optional YAML file shared by every command
var configPath string

var rootCmd = &cobra.Command{
	Use:   "taskdo",
	Short: "Personal todo tracking service",
	Long: `Taskdo serves a JSON API where users register, obtain bearer tokens
and manage their own todos.

Settings come from environment variables, optionally layered over a YAML
file given with --config.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.LoggerConfig{
			CallerKey:  "file",
			TimeKey:    "timestamp",
			CallerSkip: 1,
		})
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createMigrationCmd)
}
