package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverBolt     = "bolt"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// AppConfig holds all configuration for the notification engine.
type AppConfig struct {
	LogLevel    string
	Environment string
	Timezone    string // IANA name; day buckets and slot times use it

	StoreDriver string // bolt | postgres | memory
	BoltPath    string
	DatabaseURL string // required only for the postgres driver

	TickCronSpec string // cron spec driving the daily-slot tick

	// Optional Telegram sink for development builds. When the token is
	// empty the engine falls back to the console sink.
	TelegramToken  string
	TelegramChatID int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	cfg.StoreDriver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreDriverBolt
	}
	switch cfg.StoreDriver {
	case StoreDriverBolt, StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	cfg.BoltPath = os.Getenv("BOLT_PATH")
	if cfg.BoltPath == "" {
		cfg.BoltPath = "data/notifier.db"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set (required for STORE_DRIVER=postgres)")
	}

	cfg.TickCronSpec = os.Getenv("TICK_CRON_SPEC")
	if cfg.TickCronSpec == "" {
		cfg.TickCronSpec = "* * * * *" // every minute
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = chatID
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not set (required when TELEGRAM_TOKEN is set)")
	}

	return cfg, nil
}
