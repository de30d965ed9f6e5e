package repositories

import (
	"context"
	"time"

	"gymcore/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByMemberNo(ctx context.Context, memberNo string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Member, error)
}

// MembershipPlanRepository defines membership plan repository interface
type MembershipPlanRepository interface {
	Create(ctx context.Context, plan *models.MembershipPlan) error
	GetByID(ctx context.Context, id uint) (*models.MembershipPlan, error)
	GetByCode(ctx context.Context, code string) (*models.MembershipPlan, error)
	Update(ctx context.Context, plan *models.MembershipPlan) error
	List(ctx context.Context) ([]*models.MembershipPlan, error)
}

// EquipmentRepository defines equipment repository interface
type EquipmentRepository interface {
	Create(ctx context.Context, eq *models.Equipment) error
	GetByID(ctx context.Context, id uint) (*models.Equipment, error)
	Update(ctx context.Context, eq *models.Equipment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, category string, offset, limit int) ([]*models.Equipment, int64, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error)
	List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error)
}

// RecurringPaymentRepository defines the record store for recurring payments.
// FindDue returns ACTIVE records whose next payment date is at or before the
// given instant. UpdateGuarded writes the record's mutable scheduling fields
// conditioned on the (status, attemptCount) pair the caller read, returning
// domain.ErrStaleRecord when the row changed underneath it.
type RecurringPaymentRepository interface {
	Create(ctx context.Context, rp *models.RecurringPayment) error
	GetByID(ctx context.Context, id uint) (*models.RecurringPayment, error)
	FindDue(ctx context.Context, before time.Time) ([]*models.RecurringPayment, error)
	UpdateGuarded(ctx context.Context, rp *models.RecurringPayment, expectedStatus string, expectedAttempts int) error
	ListByMember(ctx context.Context, memberID uint) ([]*models.RecurringPayment, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.RecurringPayment, int64, error)
}

// InstallmentPlanRepository defines the record store for installment plans.
type InstallmentPlanRepository interface {
	Create(ctx context.Context, plan *models.InstallmentPlan) error
	GetByID(ctx context.Context, id uint) (*models.InstallmentPlan, error)
	FindDue(ctx context.Context, before time.Time) ([]*models.InstallmentPlan, error)
	UpdateGuarded(ctx context.Context, plan *models.InstallmentPlan, expectedStatus string, expectedInstallment int) error
	ListByMember(ctx context.Context, memberID uint) ([]*models.InstallmentPlan, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.InstallmentPlan, int64, error)
}

// AuditLogRepository defines the append-only audit trail store
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, entityType string, entityID uint, offset, limit int) ([]*models.AuditLog, int64, error)
}
