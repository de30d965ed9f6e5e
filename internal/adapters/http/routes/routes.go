package routes

import (
	"time"

	"gymcore/internal/adapters/gateway"
	"gymcore/internal/adapters/http/handlers"
	"gymcore/internal/adapters/http/middleware"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/clock"
	"gymcore/internal/config"
	"gymcore/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the billing
// service so the caller can hand it to the cron scheduler.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.BillingService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	planRepo := repositories.NewMembershipPlanRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	recurringRepo := repositories.NewRecurringPaymentRepository(db)
	installmentRepo := repositories.NewInstallmentPlanRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Initialize services
	auditService := services.NewAuditService(auditRepo)
	notifyService := services.NewNotificationService()
	authService := services.NewAuthService(userRepo, cfg)
	memberService := services.NewMemberService(memberRepo, planRepo)
	paymentService := services.NewPaymentService(paymentRepo, memberRepo, auditService)
	dashboardService := services.NewDashboardService(db)

	chargeGateway := gateway.NewChargeGateway(cfg.Gateway.Endpoint, cfg.Gateway.APIKey)
	billingService := services.NewBillingService(
		recurringRepo,
		installmentRepo,
		paymentRepo,
		memberRepo,
		chargeGateway,
		notifyService,
		auditService,
		clock.System(),
		&cfg.Billing,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService)
	masterHandler := handlers.NewMasterHandler(planRepo, equipmentRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	billingHandler := handlers.NewBillingHandler(billingService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Health routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 routes
	v1 := app.Group("/api/v1")
	v1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, stricter rate limit)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.GetMe)

	// Protected routes
	protected := v1.Group("", middleware.AuthMiddleware(cfg))

	// Member routes
	members := protected.Group("/members")
	members.Post("/", memberHandler.CreateMember)
	members.Get("/", memberHandler.ListMembers)
	members.Get("/:id", memberHandler.GetMember)
	members.Put("/:id", memberHandler.UpdateMember)
	members.Delete("/:id", middleware.AdminOnly(), memberHandler.DeleteMember)
	members.Get("/:id/billing", billingHandler.ListMemberBilling)

	// Membership plan routes (catalogue is cacheable)
	plans := protected.Group("/plans")
	plans.Get("/", middleware.CacheControl(5*time.Minute), masterHandler.ListPlans)
	plans.Get("/:id", masterHandler.GetPlan)
	plans.Post("/", middleware.AdminOnly(), masterHandler.CreatePlan)
	plans.Put("/:id", middleware.AdminOnly(), masterHandler.UpdatePlan)

	// Equipment routes
	equipment := protected.Group("/equipment")
	equipment.Get("/", masterHandler.ListEquipment)
	equipment.Get("/:id", masterHandler.GetEquipment)
	equipment.Post("/", masterHandler.CreateEquipment)
	equipment.Put("/:id", masterHandler.UpdateEquipment)
	equipment.Delete("/:id", middleware.AdminOnly(), masterHandler.DeleteEquipment)

	// Payment routes
	payments := protected.Group("/payments")
	payments.Post("/", paymentHandler.RecordPayment)
	payments.Get("/", paymentHandler.ListPayments)
	payments.Get("/:id", paymentHandler.GetPayment)

	// Billing routes
	billing := protected.Group("/billing")
	billing.Post("/recurring", billingHandler.CreateRecurringPayment)
	billing.Get("/recurring", billingHandler.ListRecurringPayments)
	billing.Get("/recurring/:id", billingHandler.GetRecurringPayment)
	billing.Post("/recurring/:id/pause", billingHandler.PauseRecurringPayment)
	billing.Post("/recurring/:id/resume", billingHandler.ResumeRecurringPayment)
	billing.Post("/recurring/:id/cancel", billingHandler.CancelRecurringPayment)
	billing.Post("/installments", billingHandler.CreateInstallmentPlan)
	billing.Get("/installments", billingHandler.ListInstallmentPlans)
	billing.Get("/installments/:id", billingHandler.GetInstallmentPlan)
	billing.Post("/installments/:id/cancel", billingHandler.CancelInstallmentPlan)
	billing.Post("/sweeps/recurring", middleware.AdminOnly(), billingHandler.RunRecurringSweep)
	billing.Post("/sweeps/installments", middleware.AdminOnly(), billingHandler.RunInstallmentSweep)

	// Dashboard routes (admin)
	protected.Get("/dashboard", middleware.AdminOnly(), dashboardHandler.GetDashboard)

	// Audit trail routes (admin)
	protected.Get("/audit-logs", middleware.AdminOnly(), auditHandler.ListAuditLogs)

	return billingService
}
