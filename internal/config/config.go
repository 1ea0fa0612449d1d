package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port      string
	LogLevel  string
	Storage   string
	DBConn    string
	JWTSecret string
	TokenTTL  time.Duration
	CBRURL    string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	ReminderSchedule   string
	ReminderWindowDays int
	DefaultCurrency    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		Storage:   strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=bank sslmode=disable"),
		JWTSecret: getEnv("JWT_SECRET", "secret"),
		CBRURL:    getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@finance-tracker.local"),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "@every 5m"),
		DefaultCurrency:  strings.ToUpper(getEnv("DEFAULT_CURRENCY", "RUB")),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.ReminderWindowDays, err = strconv.Atoi(getEnv("REMINDER_WINDOW_DAYS", "7")); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_WINDOW_DAYS: %w", err)
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ReminderWindowDays < 0 || cfg.ReminderWindowDays > 366 {
		return nil, fmt.Errorf("REMINDER_WINDOW_DAYS must be within 0-366, got %d", cfg.ReminderWindowDays)
	}
	if money.GetCurrency(cfg.DefaultCurrency) == nil {
		return nil, fmt.Errorf("unknown DEFAULT_CURRENCY %q", cfg.DefaultCurrency)
	}

	return cfg, nil
}

// SMTPEnabled reports whether reminder e-mails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
