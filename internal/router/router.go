package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/orgdesk/inbox/backend/internal/directory"
	"github.com/orgdesk/inbox/backend/internal/handlers"
	"github.com/orgdesk/inbox/backend/internal/middleware"
	"github.com/orgdesk/inbox/backend/internal/models"
	"github.com/orgdesk/inbox/backend/internal/repositories"
	"github.com/orgdesk/inbox/backend/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, log zerolog.Logger) error {
	// AutoMigrate PostgreSQL models
	err := db.AutoMigrate(
		&models.Message{},
		&models.ReadCursor{},
		&models.DirectoryUser{},
		&models.Group{},
		&models.GroupMember{},
		&models.Company{},
		&models.Project{},
		&models.ProjectGroup{},
		&models.Subscription{},
		&models.Node{},
		&models.Delegation{},
	)
	if err != nil {
		return err
	}
	log.Info().Msg("auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories and services ---
	messageRepo := repositories.NewPostgresMessageRepository(db)
	cursorRepo := repositories.NewPostgresReadCursorRepository(db)
	gateway := directory.NewPostgresDirectory(db)
	messageService := services.NewMessageService(messageRepo, cursorRepo, gateway, log)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	messageHandler := handlers.NewMessageHandler(messageService)
	messageHandler.RegisterMessageRoutes(api)
	log.Info().Msg("message routes configured")

	return nil
}
