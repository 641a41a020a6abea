package routes

import (
	"stockroom-backend/controllers"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupLogRoutes registers the owner-only audit log
func SetupLogRoutes(app *fiber.App, logController *controllers.LogController, requireAuth fiber.Handler) {
	logs := app.Group("/api/logs", requireAuth, utils.RequireOwner())

	// GET /api/logs - newest entries, ?limit=
	logs.Get("/", logController.List)

	// GET /api/logs/export - same entries as xlsx
	logs.Get("/export", logController.Export)
}
