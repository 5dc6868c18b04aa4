// Package config loads runtime configuration at startup. Values come from an
// optional YAML file (CONFIG_FILE), then from the environment, which may be
// seeded from a local .env file. Missing required values fail fast.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"talent-scheduler/internal/notify"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	FrontendURL string `yaml:"frontend_url"`
	GinMode     string `yaml:"gin_mode"`

	JWTSecret       string        `yaml:"jwt_secret"`
	StaticTokens    []string      `yaml:"static_tokens"`
	BookingTokenTTL time.Duration `yaml:"booking_token_ttl"`

	ReminderSchedule string        `yaml:"reminder_schedule"`
	ReminderWindow   time.Duration `yaml:"reminder_window"`
	ActionLockTTL    time.Duration `yaml:"action_lock_ttl"`

	PublicRatePerSecond float64 `yaml:"public_rate_per_second"`
	PublicRateBurst     int     `yaml:"public_rate_burst"`

	Google GoogleConfig       `yaml:"google"`
	Email  notify.EmailConfig `yaml:"email"`
}

// GoogleConfig is the OAuth client used to create calendar events on the
// organiser account identified by RefreshToken.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	RefreshToken string `yaml:"refresh_token"`
	CalendarID   string `yaml:"calendar_id"`
}

// OAuthConfigured reports whether the OAuth client is known.
func (g GoogleConfig) OAuthConfigured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

func defaults() *Config {
	return &Config{
		Port:                "8080",
		FrontendURL:         "http://localhost:3000",
		GinMode:             "release",
		BookingTokenTTL:     14 * 24 * time.Hour,
		ReminderSchedule:    "@every 15m",
		ReminderWindow:      24 * time.Hour,
		ActionLockTTL:       30 * time.Second,
		PublicRatePerSecond: 1,
		PublicRateBurst:     10,
		Google:              GoogleConfig{CalendarID: "primary"},
		Email:               notify.EmailConfig{Port: 587, FromName: "Arbeit Talent Portal"},
	}
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(&c.Port, "PORT")
	str(&c.DatabaseURL, "DATABASE_URL")
	str(&c.RedisURL, "REDIS_URL")
	str(&c.FrontendURL, "FRONTEND_URL")
	str(&c.GinMode, "GIN_MODE")
	str(&c.JWTSecret, "JWT_SECRET")
	str(&c.ReminderSchedule, "REMINDER_SCHEDULE")
	str(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	str(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	str(&c.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	str(&c.Google.RefreshToken, "GOOGLE_REFRESH_TOKEN")
	str(&c.Google.CalendarID, "GOOGLE_CALENDAR_ID")
	str(&c.Email.Host, "SMTP_HOST")
	str(&c.Email.Username, "SMTP_USERNAME")
	str(&c.Email.Password, "SMTP_PASSWORD")
	str(&c.Email.From, "SMTP_FROM")

	if v := strings.TrimSpace(os.Getenv("STATIC_TOKENS")); v != "" {
		c.StaticTokens = nil
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.StaticTokens = append(c.StaticTokens, t)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("SMTP_PORT")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.Port = p
	}
	for key, dst := range map[string]*time.Duration{
		"BOOKING_TOKEN_TTL": &c.BookingTokenTTL,
		"REMINDER_WINDOW":   &c.ReminderWindow,
		"ACTION_LOCK_TTL":   &c.ActionLockTTL,
	} {
		if err := dur(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.BookingTokenTTL <= 0 {
		return fmt.Errorf("booking token ttl must be positive")
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	c.Port = strings.TrimPrefix(c.Port, ":")
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
