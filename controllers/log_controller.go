package controllers

import (
	"bytes"
	"fmt"
	"time"

	"stockroom-backend/services"

	"github.com/gofiber/fiber/v2"
)

// LogController exposes the inventory audit log to owners
type LogController struct {
	Audit *services.AuditService
}

// NewLogController creates a LogController
func NewLogController(audit *services.AuditService) *LogController {
	return &LogController{Audit: audit}
}

// List returns the newest log entries of the caller's store
func (lc *LogController) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	logs, err := lc.Audit.ListLogs(c.UserContext(), actor, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}

// Export sends the same entries as an xlsx workbook
func (lc *LogController) Export(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}

	logs, err := lc.Audit.ListLogs(c.UserContext(), actor, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}

	// build the workbook in memory
	var buf bytes.Buffer
	if err := services.WriteLogsWorkbook(&buf, logs); err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("inventory-logs-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(buf.Bytes())
}
