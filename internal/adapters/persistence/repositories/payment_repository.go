package repositories

import (
	"context"

	"gymcore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create persists a new payment record
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Member").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByMember lists payments for a member with pagination
func (r *paymentRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("member_id = ?", memberID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("paid_at DESC").Offset(offset).Limit(limit).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// List lists all payments with pagination
func (r *paymentRepository) List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("paid_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
