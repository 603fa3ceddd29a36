package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Security SecurityConfig
	Payment  PaymentConfig
	Billing  BillingConfig
	Sweep    SweepConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost int
}

// PaymentConfig holds Paystack gateway configuration
type PaymentConfig struct {
	BaseURL       string // gateway API base URL
	SecretKey     string // SECRET - never expose to client
	PublicKey     string
	CallbackURL   string // URL the gateway redirects the guest to after payment
	WebhookSecret string // key used to verify webhook signatures; defaults to SecretKey
	VerifyRetries int    // bounded retry count for verification calls
}

// BillingConfig holds billing-related configuration
type BillingConfig struct {
	Currency        string
	TaxRateBasisPts int64 // 1000 = 10%
}

// SweepConfig holds the unpaid-reservation reconciliation sweep settings
type SweepConfig struct {
	Interval   time.Duration // how often the sweep runs
	StaleAfter time.Duration // how old an unpaid pending booking must be before it is reported
	AutoCancel bool          // house policy: cancel stale unpaid reservations automatically
	BatchSize  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 28800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		Payment: PaymentConfig{
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			PublicKey:     getEnv("PAYSTACK_PUBLIC_KEY", ""),
			CallbackURL:   getEnv("PAYSTACK_CALLBACK_URL", ""),
			WebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),
			VerifyRetries: getEnvAsInt("PAYSTACK_VERIFY_RETRIES", 3),
		},
		Billing: BillingConfig{
			Currency:        getEnv("BILLING_CURRENCY", "NGN"),
			TaxRateBasisPts: int64(getEnvAsInt("BILLING_TAX_RATE_BP", 1000)),
		},
		Sweep: SweepConfig{
			Interval:   time.Duration(getEnvAsInt("SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
			StaleAfter: time.Duration(getEnvAsInt("SWEEP_STALE_AFTER_SECONDS", 86400)) * time.Second,
			AutoCancel: getEnvAsBool("SWEEP_AUTO_CANCEL", false),
			BatchSize:  getEnvAsInt("SWEEP_BATCH_SIZE", 100),
		},
	}

	// Webhook signature key falls back to the API secret (Paystack signs
	// webhooks with the secret key).
	if config.Payment.WebhookSecret == "" {
		config.Payment.WebhookSecret = config.Payment.SecretKey
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Billing.TaxRateBasisPts < 0 || c.Billing.TaxRateBasisPts > 10000 {
		return fmt.Errorf("BILLING_TAX_RATE_BP must be between 0 and 10000")
	}

	if c.Server.Environment == "production" && c.Payment.SecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY is required in production mode")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
