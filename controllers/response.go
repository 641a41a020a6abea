package controllers

import (
	"errors"

	"stockroom-backend/services"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// currentActor builds the service-layer actor from the authenticated profile
func currentActor(c *fiber.Ctx) (services.Actor, error) {
	profile, ok := utils.CurrentProfile(c)
	if !ok {
		return services.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return services.ActorFromProfile(profile), nil
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidLocationType),
		errors.Is(err, services.ErrInvalidSKU),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrInvalidStaff),
		errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrProductLimitReached):
		return fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrCrossTenant):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateSKU),
		errors.Is(err, services.ErrStaffExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// respondError writes {error} with the mapped status. Unexpected errors are
// logged and answered with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()

	switch {
	case errors.Is(err, services.ErrCorruptProductState):
		utils.Logger(c).Error("corrupt product state", zap.Error(err))
		msg = services.ErrCorruptProductState.Error()
	case status == fiber.StatusInternalServerError:
		utils.Logger(c).Error("request failed", zap.Error(err))
		msg = "Internal server error"
	case errors.Is(err, services.ErrInsufficientStock):
		// surface the location and current quantity, not the wrapping
		var ise *services.InsufficientStockError
		if errors.As(err, &ise) {
			msg = ise.Error()
		}
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}
