// Package config loads modqd configuration from a JSONC file or the
// environment. Config files may carry // comments; they are stripped
// before decoding.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"
)

// Config is the top-level modqd configuration.
type Config struct {
	Dataset   string         `json:"dataset"` // path to the dataset JSON file
	API       APIConfig      `json:"api"`
	Notifiers NotifierConfig `json:"notifiers"`
	Stats     StatsConfig    `json:"stats"`
}

// APIConfig holds REST API server settings.
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Key  string `json:"api_key"` // empty disables Bearer auth
}

// NotifierConfig holds optional status-change notification targets.
type NotifierConfig struct {
	Slack    *SlackConfig    `json:"slack,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

// SlackConfig posts status changes to a Slack channel.
type SlackConfig struct {
	Token   string `json:"token"`
	Channel string `json:"channel"`
}

// TelegramConfig posts status changes to a Telegram chat.
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// StatsConfig controls the periodic ticket-count summary job.
type StatsConfig struct {
	Schedule string `json:"schedule"` // cron spec or @every duration; empty disables
}

// Load reads configuration from a JSONC file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if err := json.Unmarshal(jsonc.ToJSON(raw), cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds configuration from MODQ_* environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := defaults()
	cfg.Dataset = os.Getenv("MODQ_DATASET")
	if host := os.Getenv("MODQ_API_HOST"); host != "" {
		cfg.API.Host = host
	}
	if port := os.Getenv("MODQ_API_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("config: MODQ_API_PORT %q: %w", port, err)
		}
		cfg.API.Port = n
	}
	cfg.API.Key = os.Getenv("MODQ_API_KEY")
	if schedule := os.Getenv("MODQ_STATS_SCHEDULE"); schedule != "" {
		cfg.Stats.Schedule = schedule
	}
	if token := os.Getenv("MODQ_SLACK_TOKEN"); token != "" {
		cfg.Notifiers.Slack = &SlackConfig{
			Token:   token,
			Channel: os.Getenv("MODQ_SLACK_CHANNEL"),
		}
	}
	if token := os.Getenv("MODQ_TELEGRAM_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("MODQ_TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: MODQ_TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Notifiers.Telegram = &TelegramConfig{Token: token, ChatID: chatID}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late and obscurely.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("config: dataset path is required")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api port %d out of range", c.API.Port)
	}
	if s := c.Notifiers.Slack; s != nil {
		if s.Token == "" || s.Channel == "" {
			return fmt.Errorf("config: slack notifier needs token and channel")
		}
	}
	if t := c.Notifiers.Telegram; t != nil {
		if t.Token == "" || t.ChatID == 0 {
			return fmt.Errorf("config: telegram notifier needs token and chat_id")
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		API:   APIConfig{Host: "0.0.0.0", Port: 5001},
		Stats: StatsConfig{Schedule: "@every 1h"},
	}
}
