package handlers

import (
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/pkg/pagination"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MasterHandler handles master data endpoints (plans, equipment)
type MasterHandler struct {
	planRepo      repositories.MembershipPlanRepository
	equipmentRepo repositories.EquipmentRepository
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(
	planRepo repositories.MembershipPlanRepository,
	equipmentRepo repositories.EquipmentRepository,
) *MasterHandler {
	return &MasterHandler{
		planRepo:      planRepo,
		equipmentRepo: equipmentRepo,
	}
}

// ============================================================
// Membership Plans
// ============================================================

// ListPlans lists all membership plans
// @Summary List membership plans
// @Description Get all active membership plans
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *MasterHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.planRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list plans")
	}

	return response.Success(c, "Plans retrieved successfully", fiber.Map{
		"plans": plans,
	})
}

// GetPlan gets a membership plan by ID
// @Summary Get membership plan
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /plans/{id} [get]
func (h *MasterHandler) GetPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	plan, err := h.planRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Plan not found")
	}

	return response.Success(c, "Plan retrieved successfully", fiber.Map{
		"plan": plan,
	})
}

// CreatePlanRequest represents create plan request
type CreatePlanRequest struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	DurationMonths int             `json:"duration_months"`
}

// CreatePlan creates a new membership plan
// @Summary Create membership plan
// @Description Create a new membership plan (Admin only)
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePlanRequest true "Plan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /plans [post]
func (h *MasterHandler) CreatePlan(c *fiber.Ctx) error {
	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" || req.Name == "" {
		return response.BadRequest(c, "Code and name are required")
	}
	if !req.Price.IsPositive() {
		return response.BadRequest(c, "Price must be greater than zero")
	}
	if req.DurationMonths < 1 {
		return response.BadRequest(c, "Duration must be at least 1 month")
	}

	plan := &models.MembershipPlan{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
	}

	if err := h.planRepo.Create(c.Context(), plan); err != nil {
		return response.InternalServerError(c, "Failed to create plan")
	}

	return response.Created(c, "Plan created successfully", fiber.Map{
		"plan": plan,
	})
}

// UpdatePlanRequest represents update plan request
type UpdatePlanRequest struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	DurationMonths *int             `json:"duration_months,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// UpdatePlan updates a membership plan
// @Summary Update membership plan
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param body body UpdatePlanRequest true "Plan data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /plans/{id} [put]
func (h *MasterHandler) UpdatePlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	plan, err := h.planRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Plan not found")
	}

	var req UpdatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return response.BadRequest(c, "Price must be greater than zero")
		}
		plan.Price = *req.Price
	}
	if req.DurationMonths != nil {
		plan.DurationMonths = *req.DurationMonths
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.planRepo.Update(c.Context(), plan); err != nil {
		return response.InternalServerError(c, "Failed to update plan")
	}

	return response.Success(c, "Plan updated successfully", fiber.Map{
		"plan": plan,
	})
}

// ============================================================
// Equipment
// ============================================================

// ListEquipment lists equipment with pagination
// @Summary List equipment
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /equipment [get]
func (h *MasterHandler) ListEquipment(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	category := c.Query("category")

	items, total, err := h.equipmentRepo.List(c.Context(), category, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list equipment")
	}

	return response.Success(c, "Equipment retrieved successfully", pagination.NewResponse(items, params, total))
}

// GetEquipment gets equipment by ID
// @Summary Get equipment
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /equipment/{id} [get]
func (h *MasterHandler) GetEquipment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	eq, err := h.equipmentRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Equipment not found")
	}

	return response.Success(c, "Equipment retrieved successfully", fiber.Map{
		"equipment": eq,
	})
}

// CreateEquipmentRequest represents create equipment request
type CreateEquipmentRequest struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	SerialNo    string     `json:"serial_no"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
	Remark      string     `json:"remark,omitempty"`
}

// CreateEquipment registers new equipment
// @Summary Create equipment
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEquipmentRequest true "Equipment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /equipment [post]
func (h *MasterHandler) CreateEquipment(c *fiber.Ctx) error {
	var req CreateEquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	eq := &models.Equipment{
		Name:        req.Name,
		Category:    req.Category,
		SerialNo:    req.SerialNo,
		Status:      models.EquipmentStatusOperational,
		PurchasedAt: req.PurchasedAt,
		Remark:      req.Remark,
	}

	if err := h.equipmentRepo.Create(c.Context(), eq); err != nil {
		return response.InternalServerError(c, "Failed to create equipment")
	}

	return response.Created(c, "Equipment created successfully", fiber.Map{
		"equipment": eq,
	})
}

// UpdateEquipmentRequest represents update equipment request
type UpdateEquipmentRequest struct {
	Name           *string    `json:"name,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Status         *string    `json:"status,omitempty"`
	LastServicedAt *time.Time `json:"last_serviced_at,omitempty"`
	Remark         *string    `json:"remark,omitempty"`
}

// UpdateEquipment updates equipment
// @Summary Update equipment
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Param body body UpdateEquipmentRequest true "Equipment data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /equipment/{id} [put]
func (h *MasterHandler) UpdateEquipment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	eq, err := h.equipmentRepo.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Equipment not found")
	}

	var req UpdateEquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name != nil {
		eq.Name = *req.Name
	}
	if req.Category != nil {
		eq.Category = *req.Category
	}
	if req.Status != nil {
		if !models.ValidEquipmentStatus(*req.Status) {
			return response.BadRequest(c, "Invalid equipment status")
		}
		eq.Status = *req.Status
	}
	if req.LastServicedAt != nil {
		eq.LastServicedAt = req.LastServicedAt
	}
	if req.Remark != nil {
		eq.Remark = *req.Remark
	}

	if err := h.equipmentRepo.Update(c.Context(), eq); err != nil {
		return response.InternalServerError(c, "Failed to update equipment")
	}

	return response.Success(c, "Equipment updated successfully", fiber.Map{
		"equipment": eq,
	})
}

// DeleteEquipment removes equipment
// @Summary Delete equipment
// @Tags Master
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /equipment/{id} [delete]
func (h *MasterHandler) DeleteEquipment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if _, err := h.equipmentRepo.GetByID(c.Context(), id); err != nil {
		return response.NotFound(c, "Equipment not found")
	}

	if err := h.equipmentRepo.Delete(c.Context(), id); err != nil {
		return response.InternalServerError(c, "Failed to delete equipment")
	}

	return response.Success(c, "Equipment deleted successfully", nil)
}
