// Package config provides configuration types and loading for chatrank.
package config

import (
	"errors"
	"path/filepath"
)

// Config is the root configuration struct.
// Top-level groups: Paths, Scoring, Channels, Store, Stream, Leaderboard.
type Config struct {
	Paths       PathsConfig       `json:"paths"`
	Scoring     ScoringConfig     `json:"scoring"`
	Channels    ChannelsConfig    `json:"channels"`
	Store       StoreConfig       `json:"store"`
	Stream      StreamConfig      `json:"stream"`
	Leaderboard LeaderboardConfig `json:"leaderboard"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	Home string `json:"home" envconfig:"HOME"`
}

// ScoringConfig configures the external completion API used for rubric scoring.
type ScoringConfig struct {
	APIKey         string  `json:"apiKey" envconfig:"API_KEY"`
	APIBase        string  `json:"apiBase,omitempty" envconfig:"API_BASE"`
	Model          string  `json:"model" envconfig:"MODEL"`
	Temperature    float64 `json:"temperature" envconfig:"TEMPERATURE"`
	Parallelism    int     `json:"parallelism" envconfig:"PARALLELISM"`
	TimeoutSeconds int     `json:"timeoutSeconds" envconfig:"TIMEOUT_SECONDS"`
}

// ChannelsConfig contains all channel configurations.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Slack    SlackConfig    `json:"slack"`
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled            bool   `json:"enabled" envconfig:"ENABLED"`
	Token              string `json:"token" envconfig:"TOKEN"`
	APIBase            string `json:"apiBase,omitempty" envconfig:"API_BASE"`
	PollTimeoutSeconds int    `json:"pollTimeoutSeconds" envconfig:"POLL_TIMEOUT_SECONDS"`
}

// SlackConfig configures the Slack channel (Socket Mode).
type SlackConfig struct {
	Enabled   bool   `json:"enabled" envconfig:"ENABLED"`
	BotToken  string `json:"botToken" envconfig:"BOT_TOKEN"`
	AppToken  string `json:"appToken" envconfig:"APP_TOKEN"`
	BotUserID string `json:"botUserId" envconfig:"BOT_USER_ID"`
}

// StoreConfig configures the score store.
type StoreConfig struct {
	DBPath string `json:"dbPath" envconfig:"DB_PATH"`
}

// StreamConfig configures the optional Kafka score event stream.
type StreamConfig struct {
	Brokers string `json:"brokers" envconfig:"BROKERS"`
	Topic   string `json:"topic" envconfig:"TOPIC"`
}

// LeaderboardConfig tunes the ranking queries.
type LeaderboardConfig struct {
	MinMessages int `json:"minMessages" envconfig:"MIN_MESSAGES"`
	Limit       int `json:"limit" envconfig:"LIMIT"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Home: "~/" + ConfigDir,
		},
		Scoring: ScoringConfig{
			APIBase:        "https://api.red-pill.ai/v1",
			Model:          "gpt-4o",
			Temperature:    0.3,
			Parallelism:    4,
			TimeoutSeconds: 10,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				APIBase:            "https://api.telegram.org",
				PollTimeoutSeconds: 30,
			},
		},
		Store: StoreConfig{
			DBPath: "~/" + ConfigDir + "/scores.db",
		},
		Stream: StreamConfig{
			Topic: "chatrank.scores",
		},
		Leaderboard: LeaderboardConfig{
			MinMessages: 3,
			Limit:       5,
		},
	}
}

// DBPath returns the resolved score database path.
func (c *Config) DBPath() string {
	if c.Store.DBPath != "" {
		return c.Store.DBPath
	}
	return filepath.Join(c.Paths.Home, "scores.db")
}

// Validate checks that the configuration is sufficient to start the bot.
// Missing credentials are fatal at startup, not at first use.
func (c *Config) Validate() error {
	if c.Scoring.APIKey == "" {
		return errors.New("scoring API key is required (set CHATRANK_SCORING_API_KEY or scoring.apiKey)")
	}
	if !c.Channels.Telegram.Enabled && !c.Channels.Slack.Enabled {
		return errors.New("no channel enabled (enable channels.telegram or channels.slack)")
	}
	if c.Channels.Telegram.Enabled && c.Channels.Telegram.Token == "" {
		return errors.New("telegram channel enabled but no bot token configured")
	}
	if c.Channels.Slack.Enabled {
		if c.Channels.Slack.BotToken == "" || c.Channels.Slack.AppToken == "" {
			return errors.New("slack channel enabled but bot/app tokens not configured")
		}
	}
	return nil
}
