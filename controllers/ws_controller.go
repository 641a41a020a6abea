package controllers

import (
	"stockroom-backend/models"
	"stockroom-backend/services"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WSController upgrades authenticated clients to the live feed
type WSController struct {
	DB  *gorm.DB
	Hub *services.Hub
	Log *zap.Logger
}

// NewWSController creates a WSController
func NewWSController(db *gorm.DB, hub *services.Hub, log *zap.Logger) *WSController {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSController{DB: db, Hub: hub, Log: log}
}

// Upgrade checks the token before the handshake so a bad token gets a plain 401
func (wc *WSController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	profile, err := utils.LoadProfile(wc.DB.WithContext(c.UserContext()), c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	c.Locals(utils.LocalsProfile, profile)
	return c.Next()
}

// Handle binds the connection to the profile's store until it closes
func (wc *WSController) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		profile, ok := conn.Locals(utils.LocalsProfile).(*models.Profile)
		if !ok || profile == nil {
			conn.Close()
			return
		}

		client := wc.Hub.NewClient(conn, profile.StoreID, profile.ID)
		wc.Log.Debug("live feed subscribed",
			zap.String("client_id", client.ID),
			zap.String("store_id", profile.StoreID))
		wc.Hub.Serve(client)
	})
}
