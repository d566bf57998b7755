package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken         string `validate:"required"`
	DatabaseURL           string `validate:"required"`
	AdminTelegramID       int64  `validate:"required"`
	CoordinatorTelegramID int64  `validate:"required"` // receives invite answers
	LogLevel              string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Environment           string `validate:"required"`
	Timezone              string `validate:"required,timezone"`
	CronSpecHolidayCheck  string `validate:"required"` // daily check for tomorrow's holidays
	CronSpecAcademicYear  string `validate:"required"` // start of the academic year (March 1st)
	InviteTopN            int    `validate:"gte=1,lte=50"`
	InviteMinScore        int    `validate:"gte=1,lte=100"`
	SuggestionLimit       int    `validate:"gte=1,lte=20"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		LogLevel:             strings.ToLower(envOr("LOG_LEVEL", "info")),
		Environment:          strings.ToLower(envOr("ENVIRONMENT", "development")),
		Timezone:             envOr("TIMEZONE", "America/Sao_Paulo"),
		CronSpecHolidayCheck: envOr("CRON_SPEC_HOLIDAY_CHECK", "0 8 * * *"), // 08:00 daily
		CronSpecAcademicYear: envOr("CRON_SPEC_ACADEMIC_YEAR", "0 9 1 3 *"), // 09:00 on March 1st
	}
	var err error

	if cfg.AdminTelegramID, err = int64Env("ADMIN_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.CoordinatorTelegramID, err = int64Env("COORDINATOR_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.InviteTopN, err = intEnvOr("INVITE_TOP_N", 5); err != nil {
		return nil, err
	}
	if cfg.InviteMinScore, err = intEnvOr("INVITE_MIN_SCORE", 50); err != nil {
		return nil, err
	}
	if cfg.SuggestionLimit, err = intEnvOr("SUGGESTION_LIMIT", 5); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func int64Env(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is not set", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func intEnvOr(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
