package main

import (
	"context"
	"os"

	"github.com/yigit/costequity/internal/pkg/logger"
	"github.com/yigit/costequity/internal/server"
)

// @title Cost & Equity API
// @version 1.0
// @description Tuition, net cost, salary outcome and diversity data for higher-education institutions

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Loader JWT for write routes

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
