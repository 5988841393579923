package model

import "time"

// DefaultNutritionTimeout bounds a lookup when NUTRITION_TIMEOUT is unset.
const DefaultNutritionTimeout = 5 * time.Second

// ================ Config ================
type NutritionConfig struct {
	BaseURL   string        `envconfig:"NUTRITION_BASE_URL" default:"https://world.openfoodfacts.org"`
	Timeout   time.Duration `envconfig:"NUTRITION_TIMEOUT"`
	UserAgent string        `envconfig:"NUTRITION_USER_AGENT" default:"hydrotrack-bot/1.0"`
	CacheTTL  time.Duration `envconfig:"NUTRITION_CACHE_TTL" default:"24h"`
}

type TelegramConfig struct {
	Token string `envconfig:"TELEGRAM_BOT_TOKEN"`

	// Workers caps how many messages are handled at once across all users.
	Workers     int  `envconfig:"TELEGRAM_WORKERS" default:"32"`
	PollTimeout int  `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"60"`
	Debug       bool `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

type ConsoleConfig struct {
	UserID int64 `envconfig:"CONSOLE_USER_ID" default:"1"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}
