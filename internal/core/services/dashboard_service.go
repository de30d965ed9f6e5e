package services

import (
	"context"
	"time"

	"gymcore/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregation queries
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardData represents admin dashboard data
type DashboardData struct {
	// Member statistics
	TotalMembers     int64 `json:"total_members"`
	ActiveMembers    int64 `json:"active_members"`
	SuspendedMembers int64 `json:"suspended_members"`
	NewThisMonth     int64 `json:"new_this_month"`

	// Billing statistics
	ActiveRecurring    int64   `json:"active_recurring"`
	FailedRecurring    int64   `json:"failed_recurring"`
	ActivePlans        int64   `json:"active_plans"`
	RevenueThisMonth   float64 `json:"revenue_this_month"`
	FailedChargesMonth int64   `json:"failed_charges_month"`

	// Equipment statistics
	TotalEquipment       int64 `json:"total_equipment"`
	EquipmentMaintenance int64 `json:"equipment_maintenance"`
}

// GetDashboard returns admin dashboard data
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}
	monthStart := startOfMonth(time.Now())

	// Member counts
	s.db.WithContext(ctx).Table("members").Where("deleted_at IS NULL").Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("members").Where("status = ? AND deleted_at IS NULL", models.MemberStatusActive).Count(&data.ActiveMembers)
	s.db.WithContext(ctx).Table("members").Where("status = ? AND deleted_at IS NULL", models.MemberStatusSuspended).Count(&data.SuspendedMembers)
	s.db.WithContext(ctx).Table("members").Where("created_at >= ? AND deleted_at IS NULL", monthStart).Count(&data.NewThisMonth)

	// Billing counts
	s.db.WithContext(ctx).Table("recurring_payments").Where("status = ? AND deleted_at IS NULL", models.RecurringStatusActive).Count(&data.ActiveRecurring)
	s.db.WithContext(ctx).Table("recurring_payments").Where("status = ? AND deleted_at IS NULL", models.RecurringStatusFailed).Count(&data.FailedRecurring)
	s.db.WithContext(ctx).Table("installment_plans").Where("status = ? AND deleted_at IS NULL", models.PlanStatusActive).Count(&data.ActivePlans)

	// Revenue this month (settled charges only)
	s.db.WithContext(ctx).Table("payments").
		Where("status = ? AND paid_at >= ?", models.PaymentStatusCompleted, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.RevenueThisMonth)

	s.db.WithContext(ctx).Table("payments").
		Where("status = ? AND paid_at >= ?", models.PaymentStatusFailed, monthStart).
		Count(&data.FailedChargesMonth)

	// Equipment counts
	s.db.WithContext(ctx).Table("equipment").Where("deleted_at IS NULL").Count(&data.TotalEquipment)
	s.db.WithContext(ctx).Table("equipment").Where("status = ? AND deleted_at IS NULL", models.EquipmentStatusMaintenance).Count(&data.EquipmentMaintenance)

	return data, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
