package cmd

import (
	"taskdo-service/config"
	"taskdo-service/server"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the HTTP API",
	Long:  `Apply pending migrations, then serve the API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return server.StartServer(cfg)
	},
}
