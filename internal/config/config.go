package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	DBDSN        string

	// JWTSecret signs staff access tokens and verifies the
	// bearer token on the bank sync endpoint.
	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	// WebhookSecret is the shared HMAC key for the push-webhook signature.
	WebhookSecret      string
	WebhookSuccessCode string

	RefCodePrefix string
	OpenTime      string
	CloseTime     string

	HoldWindow      time.Duration
	OvertimeGrace   time.Duration
	PricingCacheTTL time.Duration

	LogLevel  string
	LogFormat string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "12h")
	cfg.JWTAccessTokenTTL, err = time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Webhook secret is required so the push endpoint can verify signatures
	cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	cfg.WebhookSuccessCode = getEnv("WEBHOOK_SUCCESS_CODE", "00")

	// Reference code prefix (default: NS)
	cfg.RefCodePrefix = getEnv("REF_CODE_PREFIX", "NS")

	// Operating hours, minute-granularity 24h clock
	cfg.OpenTime = getEnv("OPEN_TIME", "08:00")
	cfg.CloseTime = getEnv("CLOSE_TIME", "22:00")

	cfg.HoldWindow, err = getEnvAsDuration("HOLD_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.OvertimeGrace, err = getEnvAsDuration("OVERTIME_GRACE", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.PricingCacheTTL, err = getEnvAsDuration("PRICING_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration
// (e.g. "5m", "1h"). It returns the default value if the variable is not set.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}
