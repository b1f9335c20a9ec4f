package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTimeZone is the zone calendar days are cut in.
const DefaultTimeZone = "Asia/Seoul"

// Config keeps runtime settings for the bot and the HTTP API.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	TimeZone       string
	ReportInterval time.Duration
	ReportTime     string
	LogLevel       string
	LogDev         bool
}

// Load reads configuration from environment variables with sane defaults.
// Values from a .env file in the working directory are loaded first without
// overriding variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken:  env("TELEGRAM_TOKEN"),
		DatabaseURL:    env("DATABASE_URL"),
		HTTPAddr:       env("HTTP_ADDR"),
		JWTSecret:      env("JWT_SECRET"),
		TimeZone:       env("TIME_ZONE"),
		ReportInterval: parseInterval(env("REPORT_INTERVAL_HOURS")),
		ReportTime:     env("REPORT_TIME"),
		LogLevel:       strings.ToLower(env("LOG_LEVEL")),
		LogDev:         env("LOG_DEV") == "1" || strings.EqualFold(env("LOG_DEV"), "true"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "daily_planner.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}
	if cfg.LogLevel == "" {
		if cfg.LogDev {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "info"
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks values that every command depends on.
func (c Config) Validate() error {
	if c.ReportTime != "" {
		if _, err := time.Parse("15:04", c.ReportTime); err != nil {
			return fmt.Errorf("REPORT_TIME must be HH:MM, got %q", c.ReportTime)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// RequireTelegram fails when the bot token is missing.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// RequireJWT fails when the token signing secret is missing.
func (c Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// Location resolves TimeZone. Without a tz database Asia/Seoul falls back to
// a fixed UTC+9 zone, which is exact since Korea has no daylight saving.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err == nil {
		return loc, nil
	}
	if c.TimeZone == DefaultTimeZone {
		return time.FixedZone("KST", 9*60*60), nil
	}
	return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours <= 0 {
		return 0
	}
	return time.Duration(hours * float64(time.Hour))
}
