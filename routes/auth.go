package routes

import (
	"stockroom-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes registers store sign up, sign in and the current profile
func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController, requireAuth fiber.Handler) {
	auth := app.Group("/auth")

	// POST /auth/register - new store with its owner
	auth.Post("/register", authController.Register)

	// POST /auth/login - token for email and password
	auth.Post("/login", authController.Login)

	// GET /auth/me - the authenticated profile
	auth.Get("/me", requireAuth, authController.Me)
}
