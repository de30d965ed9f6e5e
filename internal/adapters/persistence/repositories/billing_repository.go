package repositories

import (
	"context"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/core/domain"

	"gorm.io/gorm"
)

// recurringPaymentRepository implements RecurringPaymentRepository
type recurringPaymentRepository struct {
	db *gorm.DB
}

// NewRecurringPaymentRepository creates a new recurring payment repository
func NewRecurringPaymentRepository(db *gorm.DB) RecurringPaymentRepository {
	return &recurringPaymentRepository{db: db}
}

// Create persists a new recurring payment
func (r *recurringPaymentRepository) Create(ctx context.Context, rp *models.RecurringPayment) error {
	return r.db.WithContext(ctx).Create(rp).Error
}

// GetByID gets a recurring payment by ID
func (r *recurringPaymentRepository) GetByID(ctx context.Context, id uint) (*models.RecurringPayment, error) {
	var rp models.RecurringPayment
	err := r.db.WithContext(ctx).First(&rp, id).Error
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

// FindDue returns ACTIVE recurring payments due at or before the given instant
func (r *recurringPaymentRepository) FindDue(ctx context.Context, before time.Time) ([]*models.RecurringPayment, error) {
	var records []*models.RecurringPayment
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_payment_date <= ?", models.RecurringStatusActive, before).
		Order("next_payment_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateGuarded writes scheduling state conditioned on the state the caller read.
// A zero RowsAffected means a concurrent writer got there first.
func (r *recurringPaymentRepository) UpdateGuarded(ctx context.Context, rp *models.RecurringPayment, expectedStatus string, expectedAttempts int) error {
	res := r.db.WithContext(ctx).
		Model(&models.RecurringPayment{}).
		Where("id = ? AND status = ? AND attempt_count = ?", rp.ID, expectedStatus, expectedAttempts).
		Updates(map[string]interface{}{
			"status":              rp.Status,
			"attempt_count":       rp.AttemptCount,
			"next_payment_date":   rp.NextPaymentDate,
			"last_error":          rp.LastError,
			"last_processed_date": rp.LastProcessedDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleRecord
	}
	return nil
}

// ListByMember lists recurring payments for a member
func (r *recurringPaymentRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.RecurringPayment, error) {
	var records []*models.RecurringPayment
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// List lists recurring payments, optionally filtered by status
func (r *recurringPaymentRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.RecurringPayment, int64, error) {
	var records []*models.RecurringPayment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.RecurringPayment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// installmentPlanRepository implements InstallmentPlanRepository
type installmentPlanRepository struct {
	db *gorm.DB
}

// NewInstallmentPlanRepository creates a new installment plan repository
func NewInstallmentPlanRepository(db *gorm.DB) InstallmentPlanRepository {
	return &installmentPlanRepository{db: db}
}

// Create persists a new installment plan
func (r *installmentPlanRepository) Create(ctx context.Context, plan *models.InstallmentPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// GetByID gets an installment plan by ID
func (r *installmentPlanRepository) GetByID(ctx context.Context, id uint) (*models.InstallmentPlan, error) {
	var plan models.InstallmentPlan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindDue returns ACTIVE plans due at or before the given instant
func (r *installmentPlanRepository) FindDue(ctx context.Context, before time.Time) ([]*models.InstallmentPlan, error) {
	var plans []*models.InstallmentPlan
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_due_date <= ?", models.PlanStatusActive, before).
		Order("next_due_date ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// UpdateGuarded writes plan state conditioned on the state the caller read
func (r *installmentPlanRepository) UpdateGuarded(ctx context.Context, plan *models.InstallmentPlan, expectedStatus string, expectedInstallment int) error {
	res := r.db.WithContext(ctx).
		Model(&models.InstallmentPlan{}).
		Where("id = ? AND status = ? AND current_installment = ?", plan.ID, expectedStatus, expectedInstallment).
		Updates(map[string]interface{}{
			"status":              plan.Status,
			"current_installment": plan.CurrentInstallment,
			"next_due_date":       plan.NextDueDate,
			"last_error":          plan.LastError,
			"last_processed_date": plan.LastProcessedDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleRecord
	}
	return nil
}

// ListByMember lists installment plans for a member
func (r *installmentPlanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.InstallmentPlan, error) {
	var plans []*models.InstallmentPlan
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// List lists installment plans, optionally filtered by status
func (r *installmentPlanRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.InstallmentPlan, int64, error) {
	var plans []*models.InstallmentPlan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.InstallmentPlan{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&plans).Error
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}
