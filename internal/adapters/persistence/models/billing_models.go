package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Billing Engine Tables
// ============================================================

// Payment frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// ValidFrequency reports whether f is a recognized payment frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringPayment statuses. FAILED is terminal: once retries are
// exhausted the record never re-enters automated processing.
const (
	RecurringStatusActive    = "ACTIVE"
	RecurringStatusPaused    = "PAUSED"
	RecurringStatusCancelled = "CANCELLED"
	RecurringStatusCompleted = "COMPLETED"
	RecurringStatusFailed    = "FAILED"
)

// RecurringPayment represents a scheduled repeating charge against a member.
// Rows are never deleted; terminal states are soft state.
type RecurringPayment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	MemberID          uint            `gorm:"not null;index" json:"member_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Frequency         string          `gorm:"size:10;not null" json:"frequency"`
	Method            string          `gorm:"size:20;not null;default:'card'" json:"method"`
	StartDate         time.Time       `gorm:"not null" json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	NextPaymentDate   time.Time       `gorm:"not null;index" json:"next_payment_date"`
	MaxAttempts       int             `gorm:"not null" json:"max_attempts"`
	RetryDelayMinutes int             `gorm:"not null" json:"retry_delay_minutes"`
	AutoRetry         bool            `gorm:"not null;default:true" json:"auto_retry"`
	AttemptCount      int             `gorm:"not null;default:0" json:"attempt_count"`
	Status            string          `gorm:"size:20;not null;index;default:'ACTIVE'" json:"status"`
	LastError         string          `gorm:"type:text" json:"last_error"`
	LastProcessedDate *time.Time      `json:"last_processed_date"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (RecurringPayment) TableName() string {
	return "recurring_payments"
}

// IsTerminal reports whether the record left automated processing for good.
func (rp *RecurringPayment) IsTerminal() bool {
	switch rp.Status {
	case RecurringStatusCancelled, RecurringStatusCompleted, RecurringStatusFailed:
		return true
	}
	return false
}

// RetryDelay returns the configured retry delay as a duration.
func (rp *RecurringPayment) RetryDelay() time.Duration {
	return time.Duration(rp.RetryDelayMinutes) * time.Minute
}

// InstallmentPlan statuses
const (
	PlanStatusActive    = "ACTIVE"
	PlanStatusCompleted = "COMPLETED"
	PlanStatusCancelled = "CANCELLED"
)

// InstallmentPlan represents a fixed total split into a finite sequence of
// monthly charges. The final installment absorbs any rounding remainder so
// the installments always sum to TotalAmount exactly.
type InstallmentPlan struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	MemberID             uint            `gorm:"not null;index" json:"member_id"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	NumberOfInstallments int             `gorm:"not null" json:"number_of_installments"`
	InstallmentAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	Method               string          `gorm:"size:20;not null;default:'card'" json:"method"`
	StartDate            time.Time       `gorm:"not null" json:"start_date"`
	DueDayOfMonth        int             `json:"due_day_of_month"`
	CurrentInstallment   int             `gorm:"not null;default:1" json:"current_installment"`
	NextDueDate          time.Time       `gorm:"not null;index" json:"next_due_date"`
	Status               string          `gorm:"size:20;not null;index;default:'ACTIVE'" json:"status"`
	LastError            string          `gorm:"type:text" json:"last_error"`
	LastProcessedDate    *time.Time      `json:"last_processed_date"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (InstallmentPlan) TableName() string {
	return "installment_plans"
}

// IsTerminal reports whether the plan left automated processing for good.
func (p *InstallmentPlan) IsTerminal() bool {
	return p.Status == PlanStatusCompleted || p.Status == PlanStatusCancelled
}

// FinalInstallmentAmount returns the amount charged for the last installment:
// TotalAmount minus everything charged by the preceding installments.
func (p *InstallmentPlan) FinalInstallmentAmount() decimal.Decimal {
	prior := p.InstallmentAmount.Mul(decimal.NewFromInt(int64(p.NumberOfInstallments - 1)))
	return p.TotalAmount.Sub(prior)
}

// AmountForInstallment returns the amount due for the n-th (1-indexed) installment.
func (p *InstallmentPlan) AmountForInstallment(n int) decimal.Decimal {
	if n >= p.NumberOfInstallments {
		return p.FinalInstallmentAmount()
	}
	return p.InstallmentAmount
}
