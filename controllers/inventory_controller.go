package controllers

import (
	"encoding/json"

	"stockroom-backend/models"
	"stockroom-backend/services"

	"github.com/gofiber/fiber/v2"
)

// InventoryController applies stock mutations
type InventoryController struct {
	Inventory *services.InventoryService
}

// NewInventoryController creates an InventoryController
func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{Inventory: inventory}
}

// ActionRequest is the body of POST /api/inventory/action.
// Quantity may be a JSON number or a numeric string.
type ActionRequest struct {
	ProductID    string          `json:"productId"`
	Action       string          `json:"action"`
	Quantity     json.RawMessage `json:"quantity"`
	Reason       string          `json:"reason"`
	LocationType string          `json:"locationType"`
	MoveFromType string          `json:"moveFromType"`
}

// Action applies stock_in, stock_out or move
func (ic *InventoryController) Action(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	// parse the body
	var req ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// number or numeric string
	qty, err := services.ParseQuantity(req.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	result, err := ic.Inventory.ApplyMutation(c.UserContext(), actor, services.MutationRequest{
		ProductID:    req.ProductID,
		Action:       services.ActionType(req.Action),
		Quantity:     qty,
		Reason:       req.Reason,
		LocationType: models.LocationType(req.LocationType),
		MoveFromType: models.LocationType(req.MoveFromType),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
