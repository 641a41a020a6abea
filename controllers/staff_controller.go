package controllers

import (
	"stockroom-backend/services"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// StaffController lets owners manage their employees
type StaffController struct {
	Staff *services.StaffService
}

// NewStaffController creates a StaffController
func NewStaffController(staff *services.StaffService) *StaffController {
	return &StaffController{Staff: staff}
}

// AddStaffRequest is the body of POST /api/staff
type AddStaffRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// List returns the profiles of the owner's store
func (sc *StaffController) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	profiles, err := sc.Staff.ListStaff(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"staff": profiles})
}

// Add creates a staff profile in the owner's store
func (sc *StaffController) Add(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req AddStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	profile, err := sc.Staff.AddStaff(c.UserContext(), actor, services.NewStaffInput{
		FullName: req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}
