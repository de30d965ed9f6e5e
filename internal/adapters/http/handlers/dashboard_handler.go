package handlers

import (
	"gymcore/internal/core/services"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns admin dashboard statistics
// @Summary Admin dashboard
// @Description Member, billing and equipment statistics (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
