package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gymcore/internal/adapters/http/middleware"
	"gymcore/internal/adapters/http/routes"
	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/config"
	"gymcore/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title GymCore API
// @version 1.0
// @description Gym membership and billing management API

// @contact.name API Support
// @contact.email support@gymcore.app

// @host api.gymcore.app
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default plans and admin user
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "GymCore API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	billingService := routes.Setup(app, db, cfg)

	// Start the billing sweep scheduler
	cronService := services.NewCronService(billingService, &cfg.Billing)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start billing cron: %v", err)
	}
	defer cronService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
