package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config carries everything the bot needs at startup. A GrantPeriod of
// zero disables timed expiry: completion becomes permanent and the
// sweeper never finds anything due.
type Config struct {
	BotToken    string `validate:"required"`
	DatabaseURL string `validate:"required"`

	ChannelID int64 `validate:"required"`
	GroupID   int64 `validate:"required"`

	RequiredInvites int `validate:"required,min=1"`

	GrantPeriod   time.Duration `validate:"min=0"`
	WarningWindow time.Duration `validate:"min=0"`
	SweepSchedule string        `validate:"required"`

	HTTPAddr string `validate:"required"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ChannelID:       envInt64("CHANNEL_ID", 0),
		GroupID:         envInt64("GROUP_ID", 0),
		RequiredInvites: envInt("REQUIRED_INVITES", 5),
		GrantPeriod:     time.Duration(envInt("GRANT_PERIOD_DAYS", 30)) * 24 * time.Hour,
		WarningWindow:   time.Duration(envInt("WARNING_WINDOW_HOURS", 72)) * time.Hour,
		SweepSchedule:   envDefault("SWEEP_SCHEDULE", "@hourly"),
		HTTPAddr:        envDefault("HTTP_ADDR", ":8080"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}
