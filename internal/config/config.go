package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort        string
	OperatorWorkers int

	JWTSecret string
	JWTTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	ReminderSchedule    string
	ReminderWindowDays  int
	ReminderSendTimeout time.Duration
	Location            *time.Location

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	AppBaseURL          string
}

// In all cases the default behavior should be for the docker compose setup
var defaults = map[string]any{
	"postgres_address":  "localhost",
	"postgres_port":     "5433",
	"postgres_db":       "postgres",
	"postgres_username": "postgres",
	"postgres_password": "testpassword",

	"http_port":        "9446",
	"operator_workers": 1,

	"jwt_secret": "",
	"jwt_ttl":    "168h",

	"smtp_host":      "",
	"smtp_port":      587,
	"smtp_username":  "",
	"smtp_password":  "",
	"smtp_from":      "",
	"smtp_from_name": "Deadline Tracker",

	"reminder_schedule":     "@every 1h",
	"reminder_window_days":  7,
	"reminder_send_timeout": "15s",
	"timezone":              "UTC",

	"stripe_secret_key":     "",
	"stripe_webhook_secret": "",
	"stripe_price_id":       "",
	"app_base_url":          "http://localhost:3000",
}

func ProcessEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	known := func(s string) string {
		key := strings.ToLower(s)
		if _, ok := defaults[key]; !ok {
			return ""
		}
		return key
	}
	if err := k.Load(env.Provider("", ".", known), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	location, err := time.LoadLocation(k.String("timezone"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	env := Config{
		PostgresAddress:  k.String("postgres_address"),
		PostgresPort:     k.String("postgres_port"),
		PostgresDB:       k.String("postgres_db"),
		PostgresUsername: k.String("postgres_username"),
		PostgresPassword: k.String("postgres_password"),

		HTTPPort:        k.String("http_port"),
		OperatorWorkers: k.Int("operator_workers"),

		JWTSecret: k.String("jwt_secret"),
		JWTTTL:    k.Duration("jwt_ttl"),

		SMTPHost:     k.String("smtp_host"),
		SMTPPort:     k.Int("smtp_port"),
		SMTPUsername: k.String("smtp_username"),
		SMTPPassword: k.String("smtp_password"),
		SMTPFrom:     k.String("smtp_from"),
		SMTPFromName: k.String("smtp_from_name"),

		ReminderSchedule:    k.String("reminder_schedule"),
		ReminderWindowDays:  k.Int("reminder_window_days"),
		ReminderSendTimeout: k.Duration("reminder_send_timeout"),
		Location:            location,

		StripeSecretKey:     k.String("stripe_secret_key"),
		StripeWebhookSecret: k.String("stripe_webhook_secret"),
		StripePriceID:       k.String("stripe_price_id"),
		AppBaseURL:          k.String("app_base_url"),
	}

	if env.ReminderWindowDays < 0 {
		return nil, errors.New("REMINDER_WINDOW_DAYS must not be negative")
	}
	if env.ReminderSendTimeout <= 0 {
		return nil, errors.New("REMINDER_SEND_TIMEOUT must be positive")
	}

	return &env, nil
}
