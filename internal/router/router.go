package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mkarpis/notifly/internal/embedding"
	"github.com/mkarpis/notifly/internal/fanout"
	"github.com/mkarpis/notifly/internal/handlers"
	"github.com/mkarpis/notifly/internal/models"
	"github.com/mkarpis/notifly/internal/notifications"
	"github.com/mkarpis/notifly/internal/ranking"
	"github.com/mkarpis/notifly/internal/repositories"
	"github.com/mkarpis/notifly/internal/seed"
	"github.com/mkarpis/notifly/pkg/config"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Reaction{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	postRepo := repositories.NewGormPostRepository(db)
	followRepo := repositories.NewGormFollowRepository(db)
	reactionRepo := repositories.NewGormReactionRepository(db)
	notificationRepo := repositories.NewGormNotificationRepository(db)

	// --- Embedding provider (absence is a normal operating mode) ---
	var provider embedding.Provider
	if cfg.HFAPIToken != "" {
		provider = embedding.NewHuggingFace(cfg.HFAPIToken, cfg.EmbedTimeout)
		log.Println("Embedding provider configured; AI ranking uses embeddings.")
	} else {
		provider = embedding.NewDisabled()
		log.Println("No embedding token; AI ranking runs in degraded heuristic mode.")
	}

	// --- Core services ---
	engine := fanout.NewEngine(userRepo, postRepo, followRepo, reactionRepo, notificationRepo)
	interestBuilder := ranking.NewInterestBuilder(reactionRepo, postRepo, provider)
	notificationService := notifications.NewService(notificationRepo, userRepo, interestBuilder, provider)
	seeder := seed.NewSeeder(userRepo, postRepo, followRepo, reactionRepo, notificationRepo, provider)

	api := e.Group("/api/v1")

	eventHandler := handlers.NewEventHandler(engine)
	eventHandler.RegisterEventRoutes(api)
	log.Println("Event routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	userHandler := handlers.NewUserHandler(userRepo, postRepo, reactionRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	seedHandler := handlers.NewSeedHandler(seeder, cfg.Env)
	seedHandler.RegisterSeedRoutes(api)
	log.Println("Seed routes configured.")

	log.Println("All routes configured.")
}
