package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stockroom-backend/config"
	"stockroom-backend/controllers"
	"stockroom-backend/metrics"
	"stockroom-backend/models"
	"stockroom-backend/objectstore"
	"stockroom-backend/routes"
	"stockroom-backend/services"
	"stockroom-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	log, err := utils.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	metrics.InitMetrics(cfg)

	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store services.ObjectStore
	if cfg.Storage.Bucket != "" {
		gcs, err := objectstore.NewGCSStore(ctx, cfg.Storage)
		if err != nil {
			log.Fatal("failed to open object storage", zap.Error(err))
		}
		defer gcs.Close()
		store = gcs
	} else {
		log.Warn("GCS_BUCKET not set, QR uploads are disabled")
	}

	hub := services.NewHub(log.Named("hub"))
	go hub.Run(ctx)

	app := newApp(cfg, db, log, hub, store)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// newApp wires services, controllers and routes into a fiber app
func newApp(cfg *config.Config, db *gorm.DB, log *zap.Logger, hub *services.Hub, store services.ObjectStore) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   cfg.ServiceName,
		BodyLimit: 8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				utils.Logger(c).Error("unhandled error", zap.Error(err))
				return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(utils.RequestIDMiddleware(log))
	app.Use(utils.RequestLogMiddleware())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.ReplaceAll(cfg.Server.CORSOrigins, " ", ""),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Services
	audit := services.NewAuditService(db, cfg.Limits.LogListLimit)
	productService := services.NewProductService(db, cfg.Limits.ProductsPerStore, log.Named("products"))
	inventoryService := services.NewInventoryService(db, audit, hub, log.Named("inventory"))
	staffService := services.NewStaffService(db, log.Named("staff"))
	qrService := services.NewQRService(store, productService, log.Named("qr"))

	// Controllers
	authController := controllers.NewAuthController(db)
	productController := controllers.NewProductController(productService, qrService)
	inventoryController := controllers.NewInventoryController(inventoryService)
	logController := controllers.NewLogController(audit)
	staffController := controllers.NewStaffController(staffService)
	wsController := controllers.NewWSController(db, hub, log.Named("ws"))

	requireAuth := utils.AuthMiddleware(db)

	// Routes
	routes.SetupAuthRoutes(app, authController, requireAuth)
	routes.SetupProductRoutes(app, productController, requireAuth)
	routes.SetupInventoryRoutes(app, inventoryController, requireAuth)
	routes.SetupLogRoutes(app, logController, requireAuth)
	routes.SetupStaffRoutes(app, staffController, requireAuth)
	routes.SetupWSRoutes(app, wsController)

	app.Get("/metrics", metrics.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	return app
}
