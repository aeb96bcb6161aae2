package main

import (
	"context"
	"os"

	"github.com/yigit/abiturient/internal/pkg/logger"
	"github.com/yigit/abiturient/internal/server"
)

// @title Abiturient API
// @version 1.0
// @description Admissions assistant for applicants, parents and administrators.

// @contact.name API Support
// @contact.email support@ai-assistent.ru

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". The session cookie is accepted as well.

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
