package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/clock"
	"gymcore/internal/config"
	"gymcore/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Billing service errors
var (
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInvalidFrequency        = errors.New("unrecognized payment frequency")
	ErrInvalidStartDate        = errors.New("invalid start date")
	ErrInvalidEndDate          = errors.New("end date must be after start date")
	ErrInvalidInstallmentCount = errors.New("number of installments must be at least 1")
	ErrInvalidDueDay           = errors.New("due day of month must be between 1 and 31")
	ErrBillingMemberNotFound   = errors.New("member not found")
)

const dateLayout = "2006-01-02"

// BillingService owns the scheduling, retry and state-transition policy for
// recurring payments and installment plans. It is the only writer of those
// records: REST handlers and the cron invoker both go through it.
type BillingService struct {
	recurringRepo repositories.RecurringPaymentRepository
	planRepo      repositories.InstallmentPlanRepository
	paymentRepo   repositories.PaymentRepository
	memberRepo    repositories.MemberRepository
	gateway       ChargeGateway
	notifyService *NotificationService
	auditService  *AuditService
	clock         clock.Clock
	cfg           *config.BillingConfig

	// One sweep of each kind at a time; an overlapping trigger is skipped
	// rather than queued so a slow sweep cannot pile up duplicates.
	recurringMu   sync.Mutex
	installmentMu sync.Mutex
}

// NewBillingService creates a new billing service
func NewBillingService(
	recurringRepo repositories.RecurringPaymentRepository,
	planRepo repositories.InstallmentPlanRepository,
	paymentRepo repositories.PaymentRepository,
	memberRepo repositories.MemberRepository,
	gateway ChargeGateway,
	notifyService *NotificationService,
	auditService *AuditService,
	clk clock.Clock,
	cfg *config.BillingConfig,
) *BillingService {
	return &BillingService{
		recurringRepo: recurringRepo,
		planRepo:      planRepo,
		paymentRepo:   paymentRepo,
		memberRepo:    memberRepo,
		gateway:       gateway,
		notifyService: notifyService,
		auditService:  auditService,
		clock:         clk,
		cfg:           cfg,
	}
}

// ============================================================
// Creation operations
// ============================================================

// CreateRecurringPaymentInput represents create recurring payment input
type CreateRecurringPaymentInput struct {
	MemberID          uint            `json:"member_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	Frequency         string          `json:"frequency" validate:"required"`
	Method            string          `json:"method,omitempty"`
	StartDate         string          `json:"start_date" validate:"required"`
	EndDate           string          `json:"end_date,omitempty"`
	MaxAttempts       int             `json:"max_attempts,omitempty"`
	RetryDelayMinutes int             `json:"retry_delay_minutes,omitempty"`
	AutoRetry         *bool           `json:"auto_retry,omitempty"`
}

// CreateRecurringPayment validates the input and persists a new ACTIVE
// recurring payment with its first charge due on the start date.
func (s *BillingService) CreateRecurringPayment(ctx context.Context, input *CreateRecurringPaymentInput) (*models.RecurringPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.ValidFrequency(input.Frequency) {
		return nil, ErrInvalidFrequency
	}

	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}

	var endDate *time.Time
	if input.EndDate != "" {
		parsed, err := time.Parse(dateLayout, input.EndDate)
		if err != nil || !parsed.After(startDate) {
			return nil, ErrInvalidEndDate
		}
		endDate = &parsed
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingMemberNotFound
		}
		return nil, err
	}

	rp := &models.RecurringPayment{
		MemberID:          input.MemberID,
		Amount:            input.Amount,
		Frequency:         input.Frequency,
		Method:            defaultString(input.Method, s.cfg.DefaultMethod),
		StartDate:         startDate,
		EndDate:           endDate,
		NextPaymentDate:   startDate,
		MaxAttempts:       defaultInt(input.MaxAttempts, s.cfg.DefaultMaxAttempts),
		RetryDelayMinutes: defaultInt(input.RetryDelayMinutes, s.cfg.DefaultRetryDelayMinutes),
		AutoRetry:         input.AutoRetry == nil || *input.AutoRetry,
		AttemptCount:      0,
		Status:            models.RecurringStatusActive,
	}

	if err := s.recurringRepo.Create(ctx, rp); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, models.AuditRecurringCreated, "recurring_payment", rp.ID, models.AuditActorSystem,
		fmt.Sprintf("recurring %s payment of %s for member %d", rp.Frequency, rp.Amount.StringFixed(2), rp.MemberID),
		map[string]interface{}{"next_payment_date": rp.NextPaymentDate.Format(dateLayout)})

	return rp, nil
}

// CreateInstallmentPlanInput represents create installment plan input
type CreateInstallmentPlanInput struct {
	MemberID             uint            `json:"member_id" validate:"required"`
	TotalAmount          decimal.Decimal `json:"total_amount" validate:"required"`
	NumberOfInstallments int             `json:"number_of_installments" validate:"required,gte=1"`
	Method               string          `json:"method,omitempty"`
	StartDate            string          `json:"start_date" validate:"required"`
	DueDayOfMonth        int             `json:"due_day_of_month,omitempty"`
}

// CreateInstallmentPlan validates the input and persists a new ACTIVE plan.
// The per-installment amount is rounded down to the minor unit; the final
// installment absorbs the remainder so the series sums to the total exactly.
func (s *BillingService) CreateInstallmentPlan(ctx context.Context, input *CreateInstallmentPlanInput) (*models.InstallmentPlan, error) {
	if !input.TotalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if input.NumberOfInstallments < 1 {
		return nil, ErrInvalidInstallmentCount
	}
	if input.DueDayOfMonth < 0 || input.DueDayOfMonth > 31 {
		return nil, ErrInvalidDueDay
	}

	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingMemberNotFound
		}
		return nil, err
	}

	per, _ := splitInstallments(input.TotalAmount, input.NumberOfInstallments)

	dueDay := input.DueDayOfMonth
	if dueDay == 0 {
		dueDay = startDate.Day()
	}

	plan := &models.InstallmentPlan{
		MemberID:             input.MemberID,
		TotalAmount:          input.TotalAmount,
		NumberOfInstallments: input.NumberOfInstallments,
		InstallmentAmount:    per,
		Method:               defaultString(input.Method, s.cfg.DefaultMethod),
		StartDate:            startDate,
		DueDayOfMonth:        dueDay,
		CurrentInstallment:   1,
		NextDueDate:          firstDueDate(startDate, input.DueDayOfMonth),
		Status:               models.PlanStatusActive,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.auditService.Log(ctx, models.AuditPlanCreated, "installment_plan", plan.ID, models.AuditActorSystem,
		fmt.Sprintf("%d installments of %s (total %s) for member %d",
			plan.NumberOfInstallments, plan.InstallmentAmount.StringFixed(2), plan.TotalAmount.StringFixed(2), plan.MemberID),
		map[string]interface{}{"next_due_date": plan.NextDueDate.Format(dateLayout)})

	return plan, nil
}

// ============================================================
// Control operations
// ============================================================

// PauseRecurringPayment moves an ACTIVE recurring payment to PAUSED
func (s *BillingService) PauseRecurringPayment(ctx context.Context, id uint) error {
	rp, err := s.getRecurring(ctx, id)
	if err != nil {
		return err
	}
	if rp.Status != models.RecurringStatusActive {
		return domain.ErrInvalidStateTransition
	}

	prevAttempts := rp.AttemptCount
	rp.Status = models.RecurringStatusPaused
	if err := s.recurringRepo.UpdateGuarded(ctx, rp, models.RecurringStatusActive, prevAttempts); err != nil {
		return err
	}

	s.auditService.Log(ctx, models.AuditRecurringPaused, "recurring_payment", rp.ID, models.AuditActorSystem, "", nil)
	return nil
}

// ResumeRecurringPayment moves a PAUSED recurring payment back to ACTIVE.
// The next payment date is left untouched: if it already elapsed while
// paused, the next sweep picks the record up immediately.
func (s *BillingService) ResumeRecurringPayment(ctx context.Context, id uint) error {
	rp, err := s.getRecurring(ctx, id)
	if err != nil {
		return err
	}
	if rp.Status != models.RecurringStatusPaused {
		return domain.ErrInvalidStateTransition
	}

	prevAttempts := rp.AttemptCount
	rp.Status = models.RecurringStatusActive
	if err := s.recurringRepo.UpdateGuarded(ctx, rp, models.RecurringStatusPaused, prevAttempts); err != nil {
		return err
	}

	s.auditService.Log(ctx, models.AuditRecurringResumed, "recurring_payment", rp.ID, models.AuditActorSystem, "", nil)
	return nil
}

// CancelRecurringPayment moves any non-terminal recurring payment to
// CANCELLED. Irreversible.
func (s *BillingService) CancelRecurringPayment(ctx context.Context, id uint) error {
	rp, err := s.getRecurring(ctx, id)
	if err != nil {
		return err
	}
	if rp.IsTerminal() {
		return domain.ErrInvalidStateTransition
	}

	prevStatus := rp.Status
	prevAttempts := rp.AttemptCount
	rp.Status = models.RecurringStatusCancelled
	if err := s.recurringRepo.UpdateGuarded(ctx, rp, prevStatus, prevAttempts); err != nil {
		return err
	}

	s.auditService.Log(ctx, models.AuditRecurringCancelled, "recurring_payment", rp.ID, models.AuditActorSystem, "", nil)
	return nil
}

// CancelInstallmentPlan moves an ACTIVE installment plan to CANCELLED
func (s *BillingService) CancelInstallmentPlan(ctx context.Context, id uint) error {
	plan, err := s.getPlan(ctx, id)
	if err != nil {
		return err
	}
	if plan.IsTerminal() {
		return domain.ErrInvalidStateTransition
	}

	prevInstallment := plan.CurrentInstallment
	plan.Status = models.PlanStatusCancelled
	if err := s.planRepo.UpdateGuarded(ctx, plan, models.PlanStatusActive, prevInstallment); err != nil {
		return err
	}

	s.auditService.Log(ctx, models.AuditPlanCancelled, "installment_plan", plan.ID, models.AuditActorSystem, "", nil)
	return nil
}

// ============================================================
// Queries
// ============================================================

// GetRecurringPayment gets a recurring payment by ID
func (s *BillingService) GetRecurringPayment(ctx context.Context, id uint) (*models.RecurringPayment, error) {
	return s.getRecurring(ctx, id)
}

// ListRecurringPayments lists recurring payments, optionally by status
func (s *BillingService) ListRecurringPayments(ctx context.Context, status string, offset, limit int) ([]*models.RecurringPayment, int64, error) {
	return s.recurringRepo.List(ctx, status, offset, limit)
}

// GetInstallmentPlan gets an installment plan by ID
func (s *BillingService) GetInstallmentPlan(ctx context.Context, id uint) (*models.InstallmentPlan, error) {
	return s.getPlan(ctx, id)
}

// ListInstallmentPlans lists installment plans, optionally by status
func (s *BillingService) ListInstallmentPlans(ctx context.Context, status string, offset, limit int) ([]*models.InstallmentPlan, int64, error) {
	return s.planRepo.List(ctx, status, offset, limit)
}

// ListByMember lists both kinds of billing records for a member
func (s *BillingService) ListByMember(ctx context.Context, memberID uint) ([]*models.RecurringPayment, []*models.InstallmentPlan, error) {
	recurring, err := s.recurringRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	plans, err := s.planRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	return recurring, plans, nil
}

func (s *BillingService) getRecurring(ctx context.Context, id uint) (*models.RecurringPayment, error) {
	rp, err := s.recurringRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecurringNotFound
		}
		return nil, err
	}
	return rp, nil
}

func (s *BillingService) getPlan(ctx context.Context, id uint) (*models.InstallmentPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}
	return plan, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
