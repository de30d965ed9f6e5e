package handlers

import (
	"errors"

	"gymcore/internal/core/domain"
	"gymcore/internal/core/services"
	"gymcore/internal/pkg/pagination"
	"gymcore/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member management endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// CreateMember creates a new member
// @Summary Create member
// @Description Register a new gym member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) CreateMember(c *fiber.Ctx) error {
	var input services.CreateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Full name is required")
		case errors.Is(err, services.ErrMemberPlanNotFound):
			return response.BadRequest(c, "Membership plan not found")
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member,
	})
}

// GetMember gets a member by ID
// @Summary Get member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	member, err := h.memberService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": member,
	})
}

// ListMembers lists members with pagination
// @Summary List members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param q query string false "Search by name or member number"
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) ListMembers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	if q := c.Query("q"); q != "" {
		members, err := h.memberService.Search(c.Context(), q, params.Limit)
		if err != nil {
			return response.InternalServerError(c, "Failed to search members")
		}
		return response.Success(c, "Members retrieved successfully", fiber.Map{
			"members": members,
		})
	}

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// UpdateMember updates a member
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.UpdateMemberInput true "Member data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var input services.UpdateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrMemberPlanNotFound):
			return response.BadRequest(c, "Membership plan not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid member status")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", fiber.Map{
		"member": member,
	})
}

// DeleteMember soft-deletes a member
// @Summary Delete member
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.memberService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}
