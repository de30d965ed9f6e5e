package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member service errors
var (
	ErrMemberPlanNotFound = errors.New("membership plan not found")
)

// MemberService handles member business logic
type MemberService struct {
	memberRepo repositories.MemberRepository
	planRepo   repositories.MembershipPlanRepository
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repositories.MemberRepository, planRepo repositories.MembershipPlanRepository) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		planRepo:   planRepo,
	}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	FullName         string `json:"full_name" validate:"required"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	MembershipPlanID *uint  `json:"membership_plan_id,omitempty"`
}

// Create creates a new member with a generated member number
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, domain.ErrInvalidInput
	}

	if input.MembershipPlanID != nil {
		if _, err := s.planRepo.GetByID(ctx, *input.MembershipPlanID); err != nil {
			return nil, ErrMemberPlanNotFound
		}
	}

	member := &models.Member{
		MemberNo:         generateMemberNo(),
		FullName:         input.FullName,
		Email:            input.Email,
		Phone:            input.Phone,
		MembershipPlanID: input.MembershipPlanID,
		Status:           models.MemberStatusActive,
		JoinedAt:         time.Now(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// UpdateMemberInput represents update member input
type UpdateMemberInput struct {
	FullName         *string `json:"full_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	MembershipPlanID *uint   `json:"membership_plan_id,omitempty"`
	Status           *string `json:"status,omitempty"`
}

// Update updates a member
func (s *MemberService) Update(ctx context.Context, id uint, input *UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		member.FullName = *input.FullName
	}
	if input.Email != nil {
		member.Email = *input.Email
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.MembershipPlanID != nil {
		if _, err := s.planRepo.GetByID(ctx, *input.MembershipPlanID); err != nil {
			return nil, ErrMemberPlanNotFound
		}
		member.MembershipPlanID = input.MembershipPlanID
	}
	if input.Status != nil {
		if !models.ValidMemberStatus(*input.Status) {
			return nil, domain.ErrInvalidInput
		}
		member.Status = *input.Status
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete soft-deletes a member
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.memberRepo.Delete(ctx, id)
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.List(ctx, offset, limit)
}

// Search searches members by name, number or email
func (s *MemberService) Search(ctx context.Context, query string, limit int) ([]*models.Member, error) {
	return s.memberRepo.Search(ctx, query, limit)
}

// generateMemberNo produces a short unique member number
func generateMemberNo() string {
	id := uuid.New().String()
	return fmt.Sprintf("GM-%s", strings.ToUpper(id[:8]))
}
