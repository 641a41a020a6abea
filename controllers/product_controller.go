package controllers

import (
	"errors"

	"stockroom-backend/services"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductController serves the product directory
type ProductController struct {
	Products *services.ProductService
	QR       *services.QRService
}

// NewProductController creates a ProductController
func NewProductController(products *services.ProductService, qr *services.QRService) *ProductController {
	return &ProductController{Products: products, QR: qr}
}

// CreateProductRequest is the body of POST /api/products
type CreateProductRequest struct {
	Name               string          `json:"name" validate:"required,max=200"`
	SKU                string          `json:"sku" validate:"required"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	IsExpensive        bool            `json:"is_expensive"`
	MinQuantity        int             `json:"min_quantity" validate:"min=0"`
	QRURL              *string         `json:"qr_url"`
	MainLocationName   string          `json:"main_location_name" validate:"required,max=100"`
	MainQuantity       int             `json:"main_quantity" validate:"min=0"`
	SafetyLocationName string          `json:"safety_location_name" validate:"required,max=100"`
	SafetyQuantity     int             `json:"safety_quantity" validate:"min=0"`
}

// LookupRequest is the body of POST /api/products/lookup
type LookupRequest struct {
	SKU string `json:"sku"`
}

// List returns the caller's store catalogue
func (pc *ProductController) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	filter := services.ListFilter{
		LowStockOnly: c.QueryBool("low_stock", false),
		SortByName:   c.Query("sort") == "name",
	}
	products, err := pc.Products.List(c.UserContext(), actor, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// Get returns one product, sanitized for the caller's role
func (pc *ProductController) Get(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	product, err := pc.Products.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// Create registers a product and its two locations
func (pc *ProductController) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	// SKU format is reported before anything else
	if err := services.ValidateSKU(req.SKU); err != nil {
		return respondError(c, err)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	product, err := pc.Products.Create(c.UserContext(), actor, services.CreateProductInput{
		Name:               req.Name,
		SKU:                req.SKU,
		UnitCost:           req.UnitCost,
		IsExpensive:        req.IsExpensive,
		MinQuantity:        req.MinQuantity,
		QRURL:              req.QRURL,
		MainLocationName:   req.MainLocationName,
		MainQuantity:       req.MainQuantity,
		SafetyLocationName: req.SafetyLocationName,
		SafetyQuantity:     req.SafetyQuantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// Lookup resolves a scanned SKU to a product id of the caller's store
func (pc *ProductController) Lookup(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req LookupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// another store's product answers 403 without the id
	id, err := pc.Products.LookupBySKU(c.UserContext(), actor, req.SKU)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"found": false})
	case err != nil:
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"found": true, "id": id})
}

// UploadQR stores a QR image for a SKU and returns its public URL
func (pc *ProductController) UploadQR(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// multipart fields: sku and file
	sku := c.FormValue("sku")
	if err := services.ValidateSKU(sku); err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()

	url, err := pc.QR.Upload(c.UserContext(), actor, sku, file)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"qr_url": url})
}
