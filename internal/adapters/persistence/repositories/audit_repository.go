package repositories

import (
	"context"

	"gymcore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditLogRepository implements AuditLogRepository interface.
// Entries are write-once; there is no update or delete path.
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends a new audit entry
func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists audit entries, optionally filtered by entity
func (r *auditLogRepository) List(ctx context.Context, entityType string, entityID uint, offset, limit int) ([]*models.AuditLog, int64, error) {
	var entries []*models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID != 0 {
		query = query.Where("entity_id = ?", entityID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
