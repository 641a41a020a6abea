package routes

import (
	"stockroom-backend/controllers"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupProductRoutes registers the product directory
func SetupProductRoutes(app *fiber.App, productController *controllers.ProductController, requireAuth fiber.Handler) {
	products := app.Group("/api/products", requireAuth)

	// GET /api/products - store catalogue, ?low_stock=true&sort=name
	products.Get("/", productController.List)

	// POST /api/products - new product with main and safety locations (owner)
	products.Post("/", utils.RequireOwner(), productController.Create)

	// POST /api/products/lookup - scanned SKU to product id
	products.Post("/lookup", productController.Lookup)

	// POST /api/products/qr - QR image upload (owner)
	products.Post("/qr", utils.RequireOwner(), productController.UploadQR)

	// GET /api/products/:id - one product (must stay after the static paths)
	products.Get("/:id", productController.Get)
}
