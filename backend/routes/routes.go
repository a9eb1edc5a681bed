package routes

import (
	"time"

	"progresstracker/backend/config"
	"progresstracker/backend/controllers"
	"progresstracker/backend/middleware"
	"progresstracker/backend/storage"
	"progresstracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes registers every API route. now is the clock progress
// transitions are stamped with.
func SetupRoutes(app *fiber.App, db *gorm.DB, st storage.Storage, cfg *config.Config, logger *utils.Logger, now func() time.Time) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg, logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)

	progressController := controllers.NewProgressController(st, cfg, logger)
	progressController.Now = now

	// User routes
	userController := controllers.NewUserController(db, progressController)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)

	// Progress routes
	progress := app.Group("/api/progress", authMiddleware)
	progress.Get("/", progressController.GetProgress)
	progress.Delete("/", progressController.ResetProgress)
	progress.Get("/export", progressController.ExportProgress)
	progress.Post("/import", progressController.ImportProgress)
	progress.Put("/preferences", progressController.UpdatePreferences)

	progress.Post("/topics", progressController.CompleteTopic)
	progress.Get("/topics/:phase/:topic", progressController.GetTopicCompletion)

	// "current" must be registered before the :pathId routes.
	progress.Post("/paths", progressController.StartPath)
	progress.Delete("/paths/current", progressController.ClearCurrentPath)
	progress.Get("/paths/:pathId", progressController.GetPathProgress)
	progress.Put("/paths/:pathId/step", progressController.UpdatePathStep)
	progress.Delete("/paths/:pathId", progressController.ClearPathProgress)

	progress.Get("/streak", progressController.GetStreak)
	progress.Get("/calendar", progressController.GetCalendar)
	progress.Get("/summary/weekly", progressController.GetWeeklySummary)
}
