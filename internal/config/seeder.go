package config

import (
	"log"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedMembershipPlans(); err != nil {
		log.Printf("⚠️ Membership plan seeder skipped: %v", err)
	}

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedMembershipPlans seeds the default plan catalogue
func (s *Seeder) seedMembershipPlans() error {
	var count int64
	s.db.Model(&models.MembershipPlan{}).Count(&count)
	if count > 0 {
		return nil // Plans already exist
	}

	plans := []models.MembershipPlan{
		{
			Code:           "MONTHLY",
			Name:           "Monthly",
			Description:    "Standard monthly membership",
			Price:          decimal.NewFromFloat(1200.00),
			DurationMonths: 1,
			IsActive:       true,
		},
		{
			Code:           "QUARTERLY",
			Name:           "Quarterly",
			Description:    "Three months, billed up front",
			Price:          decimal.NewFromFloat(3300.00),
			DurationMonths: 3,
			IsActive:       true,
		},
		{
			Code:           "ANNUAL",
			Name:           "Annual",
			Description:    "Twelve months, best value",
			Price:          decimal.NewFromFloat(12000.00),
			DurationMonths: 12,
			IsActive:       true,
		},
	}

	for i := range plans {
		if err := s.db.Create(&plans[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("🌱 Seeded %d membership plans", len(plans))
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@gymcore.app",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default admin user (username: admin)")
	return nil
}
