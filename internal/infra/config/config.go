package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// DefaultFromAddress is the sender of every notification e-mail.
const DefaultFromAddress = "no-reply@reserver.471.no"

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL   string
	LogLevel      string
	Environment   string
	Debug         bool // When true, mails are only written to the file record
	Timezone      string
	CronSpecDaily string        // Daily re-scan of pending notifications
	ScanOffset    time.Duration // Shifts the one-day scheduling window

	EmailFilePath string
	EmailFrom     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPTimeout   time.Duration

	TelegramToken       string // Optional, enables dispatch failure alerts
	AlertTelegramChatID int64

	MetricsAddr string // Empty disables the metrics endpoint
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.Debug = cfg.Environment != "production"
	if debugStr := os.Getenv("DEBUG"); debugStr != "" {
		cfg.Debug, err = strconv.ParseBool(debugStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG: %w", err)
		}
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Oslo"
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.CronSpecDaily = os.Getenv("CRON_SPEC_DAILY_SCAN")
	if cfg.CronSpecDaily == "" {
		cfg.CronSpecDaily = "0 8 * * *" // Default: 08:00 every day
	}

	if cfg.ScanOffset, err = durationEnv("SCAN_OFFSET", 0); err != nil {
		return nil, err
	}

	cfg.EmailFilePath = os.Getenv("EMAIL_FILE_PATH")
	if cfg.EmailFilePath == "" {
		cfg.EmailFilePath = "./sent_emails"
	}

	cfg.EmailFrom = os.Getenv("EMAIL_FROM")
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = DefaultFromAddress
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if !cfg.Debug && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set (required when DEBUG is off)")
	}
	cfg.SMTPPort = 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		cfg.SMTPPort, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	if cfg.SMTPTimeout, err = durationEnv("SMTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("ALERT_TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.AlertTelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_TELEGRAM_CHAT_ID: %w", err)
		}
	}
	if cfg.TelegramToken != "" && cfg.AlertTelegramChatID == 0 {
		return nil, fmt.Errorf("ALERT_TELEGRAM_CHAT_ID is not set (required with TELEGRAM_TOKEN)")
	}

	cfg.MetricsAddr = ":9090"
	if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
		cfg.MetricsAddr = addr
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// Location returns the configured scheduler time zone.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
