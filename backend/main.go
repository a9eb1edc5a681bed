package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"progresstracker/backend/config"
	"progresstracker/backend/middleware"
	"progresstracker/backend/models"
	"progresstracker/backend/routes"
	"progresstracker/backend/storage"
	"progresstracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.LoginHistory{}); err != nil {
		logger.Fatal("Error migrating database", "error", err)
	}

	// Progress snapshots
	st := storage.New(cfg, db, logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, st, cfg, logger, time.Now)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("Server listening", "port", cfg.ServerPort, "storage", cfg.StorageBackend, "timezone", cfg.Timezone)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Server stopped", "error", err)
	}
}
