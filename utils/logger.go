package utils

import (
	"time"

	"stockroom-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	RequestIDHeader = "X-Request-ID"

	// LocalsLogger holds the request-scoped *zap.Logger
	LocalsLogger    = "logger"
	LocalsRequestID = "request_id"
)

var baseLogger = zap.NewNop()

// NewLogger builds the root logger: JSON in production, colored console otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.OutputPaths = []string{"stdout"}

	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Server.Env),
	)
	baseLogger = logger
	return logger, nil
}

// RequestIDMiddleware tags each request with an id and a logger carrying it
func RequestIDMiddleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals(LocalsRequestID, requestID)
		c.Locals(LocalsLogger, log.With(zap.String("request_id", requestID)))
		return c.Next()
	}
}

// RequestLogMiddleware writes one line per request
func RequestLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		Logger(c).Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()))
		return err
	}
}

// Logger returns the request logger, falling back to the root logger
func Logger(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(LocalsLogger).(*zap.Logger); ok && log != nil {
		return log
	}
	return baseLogger
}
