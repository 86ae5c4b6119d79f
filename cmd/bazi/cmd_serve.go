package main

import (
	"github.com/spf13/cobra"

	"github.com/mingshi/bazi-engine/internal/app"
	"github.com/mingshi/bazi-engine/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Long: `Start the chart HTTP API with its background jobs: the sqlite chart
store, the annual refresh at each new year and the periodic database
health check. Configuration comes from the environment and .env.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting bazi engine")

	application, err := app.New(log)
	if err != nil {
		return err
	}

	return application.Serve()
}
