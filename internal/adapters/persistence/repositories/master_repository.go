package repositories

import (
	"context"

	"gymcore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ============================================================
// Master data repositories (membership plans, equipment)
// ============================================================

// membershipPlanRepository implements MembershipPlanRepository
type membershipPlanRepository struct {
	db *gorm.DB
}

// NewMembershipPlanRepository creates a new membership plan repository
func NewMembershipPlanRepository(db *gorm.DB) MembershipPlanRepository {
	return &membershipPlanRepository{db: db}
}

func (r *membershipPlanRepository) Create(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *membershipPlanRepository) GetByID(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *membershipPlanRepository) GetByCode(ctx context.Context, code string) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *membershipPlanRepository) Update(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *membershipPlanRepository) List(ctx context.Context) ([]*models.MembershipPlan, error) {
	var plans []*models.MembershipPlan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// equipmentRepository implements EquipmentRepository
type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, eq *models.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.db.WithContext(ctx).First(&eq, id).Error
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq *models.Equipment) error {
	return r.db.WithContext(ctx).Save(eq).Error
}

func (r *equipmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Equipment{}, id).Error
}

func (r *equipmentRepository) List(ctx context.Context, category string, offset, limit int) ([]*models.Equipment, int64, error) {
	var items []*models.Equipment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Equipment{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
