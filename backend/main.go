package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"lms/backend/config"
	"lms/backend/gamification"
	"lms/backend/middleware"
	"lms/backend/notifications"
	"lms/backend/progress"
	"lms/backend/routes"
	"lms/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Domain services
	points := gamification.NewService(db, logger)
	notify := notifications.NewService(db, logger)
	reconciler := progress.NewReconciler(progress.NewGormStore(db), points, notify, logger)
	defer reconciler.Close()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, routes.Services{
		Reconciler: reconciler,
		Points:     points,
		Notify:     notify,
	})

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
