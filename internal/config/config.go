package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// ErrMissingBotToken is returned by ValidateBot when TELEGRAM_BOT_TOKEN is
// unset. The MCP server shares this config and runs without a token.
var ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN is required")

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	// OwnerChatID binds the bot to one chat; 0 binds to the first chat
	// that writes.
	OwnerChatID int64 `env:"OWNER_CHAT_ID"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"none"`
	StatePath      string `env:"STATE_FILE_PATH" envDefault:"data/state.json"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKey       string `env:"REDIS_KEY" envDefault:"mindbuddy:session"`

	// Notifications
	NotifyInterval time.Duration `env:"NOTIFY_INTERVAL" envDefault:"30s"`
	TimeZone       string        `env:"TZ_NAME" envDefault:"Local"`

	// Chat
	ReplyDelayMin time.Duration `env:"REPLY_DELAY_MIN" envDefault:"1500ms"`
	ReplyDelayMax time.Duration `env:"REPLY_DELAY_MAX" envDefault:"2500ms"`

	// Logging
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFilePath string `env:"LOG_FILE_PATH"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ReplyDelayMax < cfg.ReplyDelayMin {
		cfg.ReplyDelayMax = cfg.ReplyDelayMin
	}
	return cfg, nil
}

// ValidateBot checks the settings only the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return ErrMissingBotToken
	}
	return nil
}

// Location resolves TimeZone; unknown names fall back to time.Local.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
