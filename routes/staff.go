package routes

import (
	"stockroom-backend/controllers"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupStaffRoutes registers staff management (owner)
func SetupStaffRoutes(app *fiber.App, staffController *controllers.StaffController, requireAuth fiber.Handler) {
	staff := app.Group("/api/staff", requireAuth, utils.RequireOwner())

	staff.Get("/", staffController.List)
	staff.Post("/", staffController.Add)
}
