package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string

	SMSGatewayURL   string
	SMSGatewayToken string
	SMSSender       string

	WebhookURL string

	CronSpecNotificationSweep string
	CronSpecResultPush        string
	WorkerPollInterval        time.Duration
	TaskMaxAttempts           int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.SendgridAPIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.EmailFrom = os.Getenv("EMAIL_FROM")
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = "no-reply@recruitment.local"
	}
	cfg.EmailFromName = os.Getenv("EMAIL_FROM_NAME")
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = "Recruitment Platform"
	}

	cfg.SMSGatewayURL = os.Getenv("SMS_GATEWAY_URL")
	if cfg.SMSGatewayURL == "" {
		return nil, fmt.Errorf("SMS_GATEWAY_URL is not set")
	}
	cfg.SMSGatewayToken = os.Getenv("SMS_GATEWAY_TOKEN")
	if cfg.SMSGatewayToken == "" {
		return nil, fmt.Errorf("SMS_GATEWAY_TOKEN is not set")
	}
	cfg.SMSSender = os.Getenv("SMS_SENDER")
	if cfg.SMSSender == "" {
		cfg.SMSSender = "Rekrutacja"
	}

	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecNotificationSweep = os.Getenv("CRON_SPEC_NOTIFICATION_SWEEP")
	if cfg.CronSpecNotificationSweep == "" {
		cfg.CronSpecNotificationSweep = "*/10 * * * *" // Default: every 10 minutes
	}

	cfg.CronSpecResultPush = os.Getenv("CRON_SPEC_RESULT_PUSH")
	if cfg.CronSpecResultPush == "" {
		cfg.CronSpecResultPush = "*/15 * * * *" // Default: every 15 minutes
	}

	pollStr := os.Getenv("WORKER_POLL_INTERVAL")
	if pollStr == "" {
		pollStr = "5s"
	}
	cfg.WorkerPollInterval, err = time.ParseDuration(pollStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_POLL_INTERVAL: %w", err)
	}

	attemptsStr := os.Getenv("TASK_MAX_ATTEMPTS")
	if attemptsStr == "" {
		attemptsStr = "3"
	}
	cfg.TaskMaxAttempts, err = strconv.Atoi(attemptsStr)
	if err != nil || cfg.TaskMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid TASK_MAX_ATTEMPTS: %q", attemptsStr)
	}

	return cfg, nil
}
