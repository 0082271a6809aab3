package main

import (
	"github.com/labstack/echo/v4"
	"github.com/orgdesk/inbox/backend/internal/router"
	"github.com/orgdesk/inbox/backend/pkg/config"
	"github.com/orgdesk/inbox/backend/pkg/logging"
	"github.com/orgdesk/inbox/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.Postgres, log); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
