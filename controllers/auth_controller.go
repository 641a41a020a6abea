package controllers

import (
	"errors"
	"strings"

	"stockroom-backend/models"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errEmailTaken = errors.New("email already registered")

// AuthController handles store registration and sign in
type AuthController struct {
	DB *gorm.DB
}

// NewAuthController creates an AuthController
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// RegisterRequest opens a new store with its owner
type RegisterRequest struct {
	StoreName string `json:"store_name" validate:"required,min=2,max=100"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest is an email and password pair
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the session token and the signed in profile
type AuthResponse struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// Register creates a store and its owner profile in one transaction
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	// normalize before validating
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.StoreName = strings.TrimSpace(req.StoreName)
	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	// store and owner are created together
	var profile models.Profile
	err = ac.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Profile{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errEmailTaken
		}

		store := models.Store{Name: req.StoreName}
		if err := tx.Create(&store).Error; err != nil {
			return err
		}

		profile = models.Profile{
			StoreID:      store.ID,
			FullName:     req.Name,
			Role:         models.RoleOwner,
			Email:        req.Email,
			PasswordHash: hash,
		}
		return tx.Create(&profile).Error
	})
	if errors.Is(err, errEmailTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	}
	if err != nil {
		return respondError(c, err)
	}

	// sign the session token
	token, err := utils.GenerateJWT(&profile)
	if err != nil {
		return respondError(c, err)
	}

	utils.Logger(c).Info("store registered",
		zap.String("store_id", profile.StoreID),
		zap.String("profile_id", profile.ID))

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, Profile: &profile})
}

// Login exchanges credentials for a token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(&req); err != nil {
		return respondError(c, err)
	}

	var profile models.Profile
	err := ac.DB.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}
	// same answer for unknown email and wrong password
	if err != nil || !utils.CheckPasswordHash(req.Password, profile.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := utils.GenerateJWT(&profile)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(AuthResponse{Token: token, Profile: &profile})
}

// Me returns the authenticated profile
func (ac *AuthController) Me(c *fiber.Ctx) error {
	profile, ok := utils.CurrentProfile(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.JSON(profile)
}
