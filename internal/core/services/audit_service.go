package services

import (
	"context"
	"encoding/json"
	"log"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
)

// AuditService appends activity entries to the audit trail. Writes are
// best-effort: a failed audit write is logged and never propagated, so it
// cannot abort the operation being audited.
type AuditService struct {
	auditRepo repositories.AuditLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log appends one audit entry
func (s *AuditService) Log(ctx context.Context, action, entityType string, entityID uint, actor, details string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Details:    details,
	}

	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			entry.Metadata = string(b)
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("❌ Audit write failed (%s %s/%d): %v", action, entityType, entityID, err)
	}
}

// List lists audit entries for an entity
func (s *AuditService) List(ctx context.Context, entityType string, entityID uint, offset, limit int) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, entityType, entityID, offset, limit)
}
