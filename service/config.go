package service

import (
	"os"
	"strconv"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	Email struct {
		Provider       string // "sendgrid" or "smtp"; empty disables sending
		SendGridAPIKey string
		SMTPHost       string
		SMTPPort       int
		SMTPUsername   string
		SMTPPassword   string
	}

	Stripe struct {
		SecretKey          string
		RecoveryPercentOff int64
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/stubwire.db"),
	}

	// Email provider
	config.Email.Provider = getEnv("EMAIL_PROVIDER", "sendgrid")
	config.Email.SendGridAPIKey = getEnv("SENDGRID_API_KEY", "")
	config.Email.SMTPHost = getEnv("SMTP_HOST", "")
	config.Email.SMTPUsername = getEnv("SMTP_USERNAME", "")
	config.Email.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	if port, err := strconv.Atoi(getEnv("SMTP_PORT", "587")); err == nil {
		config.Email.SMTPPort = port
	} else {
		config.Email.SMTPPort = 587
	}

	// Stripe (recovery discount provisioning)
	config.Stripe.SecretKey = getEnv("STRIPE_SECRET_KEY", "")
	if percent, err := strconv.ParseInt(getEnv("RECOVERY_PERCENT_OFF", "5"), 10, 64); err == nil {
		config.Stripe.RecoveryPercentOff = percent
	} else {
		config.Stripe.RecoveryPercentOff = 5
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
