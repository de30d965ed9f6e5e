package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService handles payment history and manual payment recording.
// Engine-initiated payments are written by the BillingService directly.
type PaymentService struct {
	paymentRepo  repositories.PaymentRepository
	memberRepo   repositories.MemberRepository
	auditService *AuditService
}

// NewPaymentService creates a new payment service
func NewPaymentService(paymentRepo repositories.PaymentRepository, memberRepo repositories.MemberRepository, auditService *AuditService) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		memberRepo:   memberRepo,
		auditService: auditService,
	}
}

// RecordPaymentInput represents a manual payment recorded at the front desk
type RecordPaymentInput struct {
	MemberID    uint            `json:"member_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Method      string          `json:"method" validate:"required"`
	Description string          `json:"description,omitempty"`
}

// Record records a manual (cash/transfer) payment
func (s *PaymentService) Record(ctx context.Context, input *RecordPaymentInput, recordedBy string) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	payment := &models.Payment{
		MemberID:      member.ID,
		Amount:        input.Amount,
		Method:        input.Method,
		Status:        models.PaymentStatusCompleted,
		TransactionID: fmt.Sprintf("MAN-%s", uuid.New().String()[:8]),
		Description:   input.Description,
		PaidAt:        time.Now(),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, models.AuditManualPayment, "payment", payment.ID, recordedBy,
		fmt.Sprintf("manual %s payment of %s for member %d", input.Method, input.Amount.StringFixed(2), member.ID), nil)

	return payment, nil
}

// GetByID gets a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// List lists payments, optionally for a single member
func (s *PaymentService) List(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error) {
	if memberID != 0 {
		return s.paymentRepo.ListByMember(ctx, memberID, offset, limit)
	}
	return s.paymentRepo.List(ctx, offset, limit)
}
