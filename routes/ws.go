package routes

import (
	"stockroom-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupWSRoutes registers the live feed, authenticated by ?token=
func SetupWSRoutes(app *fiber.App, wsController *controllers.WSController) {
	app.Get("/ws", wsController.Upgrade, wsController.Handle())
}
