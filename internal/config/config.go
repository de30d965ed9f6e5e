package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Billing  BillingConfig
	Gateway  GatewayConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// BillingConfig holds the billing engine's policy defaults and the cron
// schedules for the sweep operations.
type BillingConfig struct {
	DefaultMaxAttempts       int
	DefaultRetryDelayMinutes int
	DefaultMethod            string
	RecurringSchedule        string
	InstallmentSchedule      string
	ReminderSchedule         string
	ReminderDaysAhead        int
}

// GatewayConfig holds charge gateway configuration
type GatewayConfig struct {
	Endpoint string
	APIKey   string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Billing:  loadBillingConfig(),
		Gateway:  loadGatewayConfig(appMode),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "gymcore"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", "default_secret"),
		AccessTokenMins: accessMins,
	}
}

// loadBillingConfig loads billing engine defaults
func loadBillingConfig() BillingConfig {
	maxAttempts, _ := strconv.Atoi(getEnv("BILLING_MAX_ATTEMPTS", "3"))
	retryDelay, _ := strconv.Atoi(getEnv("BILLING_RETRY_DELAY_MINUTES", "1440"))
	reminderDays, _ := strconv.Atoi(getEnv("BILLING_REMINDER_DAYS_AHEAD", "3"))

	return BillingConfig{
		DefaultMaxAttempts:       maxAttempts,
		DefaultRetryDelayMinutes: retryDelay,
		DefaultMethod:            getEnv("BILLING_DEFAULT_METHOD", "card"),
		RecurringSchedule:        getEnv("BILLING_RECURRING_CRON", "@hourly"),
		InstallmentSchedule:      getEnv("BILLING_INSTALLMENT_CRON", "@hourly"),
		ReminderSchedule:         getEnv("BILLING_REMINDER_CRON", "0 9 * * *"),
		ReminderDaysAhead:        reminderDays,
	}
}

// loadGatewayConfig loads charge gateway config based on mode
func loadGatewayConfig(mode string) GatewayConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return GatewayConfig{
		Endpoint: getEnv(prefix+"GATEWAY_ENDPOINT", ""),
		APIKey:   getEnv(prefix+"GATEWAY_API_KEY", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://admin.gymcore.app"
	}
	return origins
}
