package main

import (
	"github.com/mingshi/bazi-engine/internal/app"
	"github.com/mingshi/bazi-engine/pkg/logger"
)

func main() {
	// Bootstrap logger, replaced once configuration is loaded
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting bazi engine")

	application, err := app.New(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := application.Serve(); err != nil {
		application.Log.Fatal().Err(err).Msg("Server failed")
	}
}
