package handlers

import (
	"strconv"

	"gymcore/internal/core/services"
	"gymcore/internal/pkg/pagination"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler handles audit trail endpoints
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs lists audit trail entries
// @Summary List audit logs
// @Description Browse the append-only audit trail (Admin only)
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param entity_type query string false "Filter by entity type"
// @Param entity_id query int false "Filter by entity ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	entityType := c.Query("entity_type")
	entityID, _ := strconv.ParseUint(c.Query("entity_id", "0"), 10, 32)

	logs, total, err := h.auditService.List(c.Context(), entityType, uint(entityID), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audit logs")
	}

	return response.Success(c, "Audit logs retrieved successfully", pagination.NewResponse(logs, params, total))
}
