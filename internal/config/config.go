package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"TopstepSentinel/internal/topstep"
)

// Config holds all application configuration.
type Config struct {
	Topstep struct {
		BaseURL  string `yaml:"base_url"`
		UserName string `yaml:"username"`
		APIKey   string `yaml:"api_key"`
		Symbol   string `yaml:"symbol"`
		Live     bool   `yaml:"live"`
	} `yaml:"topstep"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
		Timezone  string `yaml:"timezone"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// Load reads an optional .env file and a YAML config file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TOPSTEP_BASE"); v != "" {
		cfg.Topstep.BaseURL = v
	}
	if v := os.Getenv("TOPSTEP_USERNAME"); v != "" {
		cfg.Topstep.UserName = v
	}
	if v := os.Getenv("TOPSTEP_API_KEY"); v != "" {
		cfg.Topstep.APIKey = v
	}
	if v := os.Getenv("TOPSTEP_SYMBOL"); v != "" {
		cfg.Topstep.Symbol = v
	}
	if v := os.Getenv("TOPSTEP_LIVE"); v != "" {
		if live, err := strconv.ParseBool(v); err == nil {
			cfg.Topstep.Live = live
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.Topstep.BaseURL == "" {
		cfg.Topstep.BaseURL = topstep.DefaultBaseURL
	}
	cfg.Topstep.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Topstep.Symbol))
	if cfg.Topstep.Symbol == "" {
		cfg.Topstep.Symbol = "MGC"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 15 23 * * 1-5"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "UTC"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/topstep_sentinel.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that the provider credentials are set. Failures are
// topstep config errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Topstep.UserName) == "" {
		return topstep.NewConfigError("topstep.username is required (TOPSTEP_USERNAME)")
	}
	if strings.TrimSpace(c.Topstep.APIKey) == "" {
		return topstep.NewConfigError("topstep.api_key is required (TOPSTEP_API_KEY)")
	}
	return nil
}

// TelegramEnabled reports whether both bot token and chat id are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ClientConfig maps the provider section to a topstep.Config.
func (c *Config) ClientConfig() topstep.Config {
	return topstep.Config{
		BaseURL:  c.Topstep.BaseURL,
		UserName: c.Topstep.UserName,
		APIKey:   c.Topstep.APIKey,
		Proxy:    c.Proxy,
	}
}
