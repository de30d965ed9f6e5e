package repositories

import (
	"context"

	"gymcore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create persists a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Preload("MembershipPlan").
		First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByMemberNo gets a member by member number
func (r *memberRepository) GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Preload("MembershipPlan").
		Where("member_no = ?", memberNo).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Delete soft-deletes a member
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("MembershipPlan").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// Search searches for members by name, member number or email
func (r *memberRepository) Search(ctx context.Context, query string, limit int) ([]*models.Member, error) {
	var members []*models.Member
	searchQuery := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("member_no LIKE ? OR full_name LIKE ? OR email LIKE ?", searchQuery, searchQuery, searchQuery).
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
