package routes

import (
	"stockroom-backend/controllers"

	"github.com/gofiber/fiber/v2"
)

// SetupInventoryRoutes registers the stock mutation endpoint
func SetupInventoryRoutes(app *fiber.App, inventoryController *controllers.InventoryController, requireAuth fiber.Handler) {
	inventory := app.Group("/api/inventory", requireAuth)

	// POST /api/inventory/action - stock_in, stock_out or move
	inventory.Post("/action", inventoryController.Action)
}
