// Package config binds the bot's settings from the environment (and a local
// .env file when present).
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hydrotrack-bot/server/internal/core"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	pkgredis "github.com/hydrotrack-bot/server/pkg/redis"
)

const (
	TransportTelegram = "telegram"
	TransportConsole  = "console"
)

// AppConfig defines all configurable parameters of the bot process.
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`
	Transport   string           `envconfig:"TRANSPORT" default:"telegram"`

	// Infrastructure
	Redis   pkgredis.Config
	Metrics model.MetricsConfig

	// Transports
	Telegram model.TelegramConfig
	Console  model.ConsoleConfig

	// Collaborators
	Nutrition model.NutritionConfig
}

// Load reads envFiles (".env" when none are given) and then the process
// environment. A missing env file is not an error; warn receives it instead.
func Load(warn func(error), envFiles ...string) (AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil && warn != nil {
		warn(err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks combinations envconfig cannot express.
func (c *AppConfig) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case TransportTelegram:
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the telegram transport")
		}
		if c.Telegram.Workers <= 0 {
			return fmt.Errorf("TELEGRAM_WORKERS must be positive, got %d", c.Telegram.Workers)
		}
	case TransportConsole:
	default:
		return fmt.Errorf("unknown TRANSPORT %q (want %s or %s)", c.Transport, TransportTelegram, TransportConsole)
	}
	switch {
	case c.Nutrition.Timeout == 0:
		c.Nutrition.Timeout = model.DefaultNutritionTimeout
	case c.Nutrition.Timeout < 0:
		return fmt.Errorf("NUTRITION_TIMEOUT must be positive, got %s", c.Nutrition.Timeout)
	}
	return nil
}
