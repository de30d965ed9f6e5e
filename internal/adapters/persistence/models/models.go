package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table (staff accounts for the admin dashboard)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'STAFF'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// User roles
const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ============================================================
// Master Tables
// ============================================================

// MembershipPlan ชนิดสมาชิก (Master)
type MembershipPlan struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	DurationMonths int             `gorm:"not null" json:"duration_months"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (MembershipPlan) TableName() string {
	return "membership_plans"
}

// ============================================================
// Main Tables
// ============================================================

// Member represents a gym member
type Member struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	MemberNo         string         `gorm:"size:20;uniqueIndex;not null" json:"member_no"`
	FullName         string         `gorm:"size:100;not null" json:"full_name"`
	Email            string         `gorm:"size:100;index" json:"email"`
	Phone            string         `gorm:"size:20" json:"phone"`
	MembershipPlanID *uint          `json:"membership_plan_id"`
	Status           string         `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	JoinedAt         time.Time      `gorm:"not null" json:"joined_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	MembershipPlan *MembershipPlan `gorm:"foreignKey:MembershipPlanID" json:"membership_plan,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// Member statuses
const (
	MemberStatusActive    = "ACTIVE"
	MemberStatusSuspended = "SUSPENDED"
	MemberStatusExpired   = "EXPIRED"
)

// ValidMemberStatus reports whether s is a known member status
func ValidMemberStatus(s string) bool {
	switch s {
	case MemberStatusActive, MemberStatusSuspended, MemberStatusExpired:
		return true
	}
	return false
}

// Equipment represents gym equipment inventory
type Equipment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Category       string         `gorm:"size:50;index" json:"category"`
	SerialNo       string         `gorm:"size:50;uniqueIndex" json:"serial_no"`
	Status         string         `gorm:"size:20;not null;default:'OPERATIONAL'" json:"status"`
	PurchasedAt    *time.Time     `json:"purchased_at"`
	LastServicedAt *time.Time     `json:"last_serviced_at"`
	Remark         string         `gorm:"type:text" json:"remark"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Equipment statuses
const (
	EquipmentStatusOperational = "OPERATIONAL"
	EquipmentStatusMaintenance = "MAINTENANCE"
	EquipmentStatusRetired     = "RETIRED"
)

// ValidEquipmentStatus reports whether s is a known equipment status
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentStatusOperational, EquipmentStatusMaintenance, EquipmentStatusRetired:
		return true
	}
	return false
}

// Payment บันทึกการชำระเงิน (one row per settled or declined charge)
type Payment struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	MemberID           uint            `gorm:"not null;index" json:"member_id"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method             string          `gorm:"size:20;not null" json:"method"`
	Status             string          `gorm:"size:20;not null" json:"status"`
	TransactionID      string          `gorm:"size:64;index" json:"transaction_id"`
	RecurringPaymentID *uint           `gorm:"index" json:"recurring_payment_id"`
	InstallmentPlanID  *uint           `gorm:"index" json:"installment_plan_id"`
	InstallmentNumber  *int            `json:"installment_number"`
	Description        string          `gorm:"type:text" json:"description"`
	PaidAt             time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// Payment statuses
const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Payment methods
const (
	PaymentMethodCard     = "card"
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

// ============================================================
// Audit Trail
// ============================================================

// AuditLog ประวัติการทำงานของระบบ (append-only, never updated)
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	EntityType string    `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID   uint      `gorm:"index" json:"entity_id"`
	Actor      string    `gorm:"size:50;not null" json:"actor"`
	Details    string    `gorm:"type:text" json:"details"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditRecurringCreated    = "RECURRING_CREATED"
	AuditRecurringPaused     = "RECURRING_PAUSED"
	AuditRecurringResumed    = "RECURRING_RESUMED"
	AuditRecurringCancelled  = "RECURRING_CANCELLED"
	AuditRecurringCompleted  = "RECURRING_COMPLETED"
	AuditChargeSucceeded     = "CHARGE_SUCCEEDED"
	AuditChargeFailed        = "CHARGE_FAILED"
	AuditRetryScheduled      = "RETRY_SCHEDULED"
	AuditRetriesExhausted    = "RETRIES_EXHAUSTED"
	AuditPlanCreated         = "PLAN_CREATED"
	AuditPlanCancelled       = "PLAN_CANCELLED"
	AuditPlanCompleted       = "PLAN_COMPLETED"
	AuditInstallmentPaid     = "INSTALLMENT_PAID"
	AuditInstallmentDeferred = "INSTALLMENT_DEFERRED"
	AuditSweepSkipped        = "SWEEP_RECORD_SKIPPED"
	AuditManualPayment       = "MANUAL_PAYMENT"
)

// System actor used for engine-initiated audit entries
const AuditActorSystem = "system"

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		// Master tables
		&MembershipPlan{},
		// Main tables
		&Member{},
		&Equipment{},
		&Payment{},
		// Billing engine tables
		&RecurringPayment{},
		&InstallmentPlan{},
		// Audit trail
		&AuditLog{},
	)
}
