package auditlog

import (
	"strconv"

	"office-portal/logger"
	"office-portal/services/audit"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
)

// AuditLogController serves the audit trail to admins.
type AuditLogController struct {
	Audit *audit.Service
}

// NewAuditLogController creates a new audit log controller
func NewAuditLogController(auditSvc *audit.Service) *AuditLogController {
	return &AuditLogController{Audit: auditSvc}
}

// Index lists audit records newest first. Filters: ?entity_type=, ?entity_id=,
// ?actor_id=, ?limit=.
func (ac *AuditLogController) Index(c *fiber.Ctx) error {
	filter := audit.ListFilter{
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, "Invalid entity_id")
		}
		entityID := uint(id)
		filter.EntityID = &entityID
	}
	if raw := c.Query("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, "Invalid actor_id")
		}
		actorID := uint(id)
		filter.ActorID = &actorID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return badRequest(c, "Invalid limit")
		}
		filter.Limit = limit
	}

	logs, err := ac.Audit.List(filter)
	if err != nil {
		logger.Error("Failed to list audit logs", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Audit logs loaded",
		Data:    logs,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}
