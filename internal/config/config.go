// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	// SlackToken is the shared verification token. Empty disables the check.
	SlackToken string `env:"SLACK_TOKEN"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8787"`
	HTTPPath     string        `env:"HTTP_PATH" envDefault:"/slack/command"`
	ReplyTimeout time.Duration `env:"REPLY_TIMEOUT" envDefault:"2500ms"`

	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandsFile string `env:"COMMANDS_FILE"`

	// HistoryRetention is how long command history is kept. Zero keeps it
	// until the per-team cap pushes it out.
	HistoryRetention     time.Duration `env:"HISTORY_RETENTION" envDefault:"720h"`
	HistoryPruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" envDefault:"1h"`

	RateLimit float64 `env:"RATE_LIMIT" envDefault:"1"`
	RateBurst int     `env:"RATE_BURST" envDefault:"5"`

	DiscordToken  string `env:"DISCORD_TOKEN"`
	DiscordPrefix string `env:"DISCORD_PREFIX" envDefault:"!"`

	Debug bool `env:"DEBUG"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ReplyTimeout <= 0 {
		return nil, fmt.Errorf("REPLY_TIMEOUT must be positive, got %s", cfg.ReplyTimeout)
	}
	if cfg.HistoryRetention > 0 && cfg.HistoryPruneInterval <= 0 {
		return nil, fmt.Errorf("HISTORY_PRUNE_INTERVAL must be positive, got %s", cfg.HistoryPruneInterval)
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 1
	}
	return &cfg, nil
}
