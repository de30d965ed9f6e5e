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

// PaymentHandler handles payment history endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPayment records a manual payment
// @Summary Record manual payment
// @Description Record a cash or transfer payment taken at the front desk
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RecordPaymentInput true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments [post]
func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	var input services.RecordPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	recordedBy, _ := c.Locals("username").(string)

	payment, err := h.paymentService.Record(c.Context(), &input, recordedBy)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to record payment")
		}
	}

	return response.Created(c, "Payment recorded successfully", fiber.Map{
		"payment": payment,
	})
}

// GetPayment gets a payment by ID
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	payment, err := h.paymentService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to get payment")
	}

	return response.Success(c, "Payment retrieved successfully", fiber.Map{
		"payment": payment,
	})
}

// ListPayments lists payments with pagination
// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param member_id query int false "Filter by member"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	memberID, _ := strconv.ParseUint(c.Query("member_id", "0"), 10, 32)

	payments, total, err := h.paymentService.List(c.Context(), uint(memberID), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", pagination.NewResponse(payments, params, total))
}
