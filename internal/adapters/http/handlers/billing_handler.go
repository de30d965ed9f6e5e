package handlers

import (
	"errors"
	"strconv"

	"gymcore/internal/core/domain"
	"gymcore/internal/core/services"
	"gymcore/internal/pkg/pagination"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BillingHandler handles recurring payment and installment plan endpoints
type BillingHandler struct {
	billingService *services.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// ============================================================
// Recurring Payments
// ============================================================

// CreateRecurringPayment creates a recurring payment schedule
// @Summary Create recurring payment
// @Description Create a recurring payment schedule for a member
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRecurringPaymentInput true "Recurring payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/recurring [post]
func (h *BillingHandler) CreateRecurringPayment(c *fiber.Ctx) error {
	var input services.CreateRecurringPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rp, err := h.billingService.CreateRecurringPayment(c.Context(), &input)
	if err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Created(c, "Recurring payment created successfully", fiber.Map{
		"recurring_payment": rp,
	})
}

// GetRecurringPayment gets a recurring payment by ID
// @Summary Get recurring payment
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recurring Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/recurring/{id} [get]
func (h *BillingHandler) GetRecurringPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	rp, err := h.billingService.GetRecurringPayment(c.Context(), id)
	if err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Recurring payment retrieved successfully", fiber.Map{
		"recurring_payment": rp,
	})
}

// ListRecurringPayments lists recurring payments
// @Summary List recurring payments
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /billing/recurring [get]
func (h *BillingHandler) ListRecurringPayments(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	items, total, err := h.billingService.ListRecurringPayments(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list recurring payments")
	}

	return response.Success(c, "Recurring payments retrieved successfully", pagination.NewResponse(items, params, total))
}

// PauseRecurringPayment pauses an active recurring payment
// @Summary Pause recurring payment
// @Description Pause an ACTIVE recurring payment so sweeps skip it
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recurring Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /billing/recurring/{id}/pause [post]
func (h *BillingHandler) PauseRecurringPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.billingService.PauseRecurringPayment(c.Context(), id); err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Recurring payment paused successfully", nil)
}

// ResumeRecurringPayment resumes a paused recurring payment
// @Summary Resume recurring payment
// @Description Resume a PAUSED recurring payment; its schedule is unchanged
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recurring Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /billing/recurring/{id}/resume [post]
func (h *BillingHandler) ResumeRecurringPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.billingService.ResumeRecurringPayment(c.Context(), id); err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Recurring payment resumed successfully", nil)
}

// CancelRecurringPayment cancels a recurring payment
// @Summary Cancel recurring payment
// @Description Cancel a recurring payment permanently
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recurring Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /billing/recurring/{id}/cancel [post]
func (h *BillingHandler) CancelRecurringPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.billingService.CancelRecurringPayment(c.Context(), id); err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Recurring payment cancelled successfully", nil)
}

// ============================================================
// Installment Plans
// ============================================================

// CreateInstallmentPlan creates an installment plan
// @Summary Create installment plan
// @Description Split a total amount into monthly installments for a member
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateInstallmentPlanInput true "Installment plan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/installments [post]
func (h *BillingHandler) CreateInstallmentPlan(c *fiber.Ctx) error {
	var input services.CreateInstallmentPlanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.billingService.CreateInstallmentPlan(c.Context(), &input)
	if err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Created(c, "Installment plan created successfully", fiber.Map{
		"installment_plan": plan,
	})
}

// GetInstallmentPlan gets an installment plan by ID
// @Summary Get installment plan
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Installment Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/installments/{id} [get]
func (h *BillingHandler) GetInstallmentPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	plan, err := h.billingService.GetInstallmentPlan(c.Context(), id)
	if err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Installment plan retrieved successfully", fiber.Map{
		"installment_plan": plan,
	})
}

// ListInstallmentPlans lists installment plans
// @Summary List installment plans
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /billing/installments [get]
func (h *BillingHandler) ListInstallmentPlans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	items, total, err := h.billingService.ListInstallmentPlans(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list installment plans")
	}

	return response.Success(c, "Installment plans retrieved successfully", pagination.NewResponse(items, params, total))
}

// CancelInstallmentPlan cancels an installment plan
// @Summary Cancel installment plan
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Installment Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /billing/installments/{id}/cancel [post]
func (h *BillingHandler) CancelInstallmentPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.billingService.CancelInstallmentPlan(c.Context(), id); err != nil {
		return h.mapBillingError(c, err)
	}

	return response.Success(c, "Installment plan cancelled successfully", nil)
}

// ListMemberBilling lists all billing schedules for a member
// @Summary List member billing
// @Description Get all recurring payments and installment plans for a member
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Router /members/{id}/billing [get]
func (h *BillingHandler) ListMemberBilling(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	recurring, installments, err := h.billingService.ListByMember(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to list member billing")
	}

	return response.Success(c, "Member billing retrieved successfully", fiber.Map{
		"recurring_payments": recurring,
		"installment_plans":  installments,
	})
}

// ============================================================
// Sweep triggers (admin)
// ============================================================

// RunRecurringSweep triggers a recurring payment sweep immediately
// @Summary Run recurring sweep
// @Description Process all due recurring payments now (Admin only)
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /billing/sweeps/recurring [post]
func (h *BillingHandler) RunRecurringSweep(c *fiber.Ctx) error {
	if err := h.billingService.ProcessRecurringPayments(c.Context()); err != nil {
		return response.InternalServerError(c, "Recurring sweep failed")
	}
	return response.Success(c, "Recurring sweep completed", nil)
}

// RunInstallmentSweep triggers an installment sweep immediately
// @Summary Run installment sweep
// @Description Process all due installments now (Admin only)
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /billing/sweeps/installments [post]
func (h *BillingHandler) RunInstallmentSweep(c *fiber.Ctx) error {
	if err := h.billingService.ProcessInstallmentPayments(c.Context()); err != nil {
		return response.InternalServerError(c, "Installment sweep failed")
	}
	return response.Success(c, "Installment sweep completed", nil)
}

// mapBillingError converts service errors to HTTP responses
func (h *BillingHandler) mapBillingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRecurringNotFound),
		errors.Is(err, domain.ErrInstallmentNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrBillingMemberNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrStaleRecord):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidFrequency),
		errors.Is(err, services.ErrInvalidStartDate),
		errors.Is(err, services.ErrInvalidEndDate),
		errors.Is(err, services.ErrInvalidInstallmentCount),
		errors.Is(err, services.ErrInvalidDueDay):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}

// parseID parses the :id path parameter
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
