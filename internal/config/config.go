package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"howlo/internal/logger"
	"howlo/internal/period"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort     string
	Store       string
	DatabaseURL string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	SlackBotToken          string
	SlackSigningSecret     string
	AnnouncementsChannelID string

	TelegramBotToken string
	TelegramChatID   int64

	AppBaseURL string
	SecretKey  string

	Location                  *time.Location
	LaunchStart               time.Time
	FirstResetStart           time.Time
	TransitionInterval        time.Duration
	PreventDuplicateCompanion bool
}

// Load читает .env (если есть) и переменные окружения
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to read .env", "error", err)
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv собирает конфиг из функции поиска переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	loc, err := time.LoadLocation(get("TIMEZONE", "America/Los_Angeles"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	launch, err := parseDate(get("LAUNCH_START", "2025-03-24"), loc)
	if err != nil {
		return nil, fmt.Errorf("LAUNCH_START: %w", err)
	}
	reset, err := parseDate(get("FIRST_RESET_START", "2025-05-01"), loc)
	if err != nil {
		return nil, fmt.Errorf("FIRST_RESET_START: %w", err)
	}
	if !launch.Before(reset) {
		return nil, fmt.Errorf("LAUNCH_START must be before FIRST_RESET_START")
	}
	if !period.IsMonthStart(reset, loc) {
		return nil, fmt.Errorf("FIRST_RESET_START: must be midnight on the 1st of a month, got %s", reset.In(loc))
	}

	interval, err := time.ParseDuration(get("TRANSITION_INTERVAL", "5m"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("TRANSITION_INTERVAL: invalid duration %q", get("TRANSITION_INTERVAL", ""))
	}

	redisDB, err := strconv.Atoi(get("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	rateLimit, err := strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "20"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}

	var tgChat int64
	if v := get("TELEGRAM_CHAT_ID", ""); v != "" {
		tgChat, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
	}

	preventDup, err := strconv.ParseBool(get("PREVENT_DUPLICATE_COMPANION", "false"))
	if err != nil {
		return nil, fmt.Errorf("PREVENT_DUPLICATE_COMPANION: %w", err)
	}

	cfg := &Config{
		AppPort:                   get("APP_PORT", "8080"),
		Store:                     get("STORE", StorePostgres),
		DatabaseURL:               get("DATABASE_URL", ""),
		RedisAddr:                 get("REDIS_ADDR", ""),
		RedisPassword:             get("REDIS_PASSWORD", ""),
		RedisDB:                   redisDB,
		RateLimitPerMinute:        rateLimit,
		SlackBotToken:             get("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret:        get("SLACK_SIGNING_SECRET", ""),
		AnnouncementsChannelID:    get("ANNOUNCEMENTS_CHANNEL_ID", ""),
		TelegramBotToken:          get("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:            tgChat,
		AppBaseURL:                strings.TrimSuffix(get("APP_BASE_URL", "http://localhost:8080"), "/"),
		SecretKey:                 get("SECRET_KEY", ""),
		Location:                  loc,
		LaunchStart:               launch,
		FirstResetStart:           reset,
		TransitionInterval:        interval,
		PreventDuplicateCompanion: preventDup,
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("STORE: unknown store %q", cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres store")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	return cfg, nil
}

// дата в формате 2006-01-02 (полночь в поясе) или RFC3339
func parseDate(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
