package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".chatrank"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("CHATRANK_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load process env vars from ~/.chatrank/env (and fallbacks) first.
	LoadEnvFileCandidates()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // Use defaults if we can't find config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("CHATRANK_PATHS", &cfg.Paths)
	envconfig.Process("CHATRANK_SCORING", &cfg.Scoring)
	envconfig.Process("CHATRANK_CHANNELS_TELEGRAM", &cfg.Channels.Telegram)
	envconfig.Process("CHATRANK_CHANNELS_SLACK", &cfg.Channels.Slack)
	envconfig.Process("CHATRANK_STORE", &cfg.Store)
	envconfig.Process("CHATRANK_STREAM", &cfg.Stream)
	envconfig.Process("CHATRANK_LEADERBOARD", &cfg.Leaderboard)

	// Fallbacks matching the original bot's .env naming.
	if cfg.Scoring.APIKey == "" {
		if key := os.Getenv("REDPILL_API_KEY"); key != "" {
			cfg.Scoring.APIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Scoring.APIKey = key
		}
	}
	if cfg.Channels.Telegram.Token == "" {
		if tok := os.Getenv("BOT_TOKEN"); tok != "" {
			cfg.Channels.Telegram.Token = tok
			cfg.Channels.Telegram.Enabled = true
		}
	}

	// Expand ~ in paths
	expandHome := func(p *string) {
		if strings.HasPrefix(*p, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				*p = filepath.Join(home, (*p)[1:])
			}
		}
	}
	expandHome(&cfg.Paths.Home)
	expandHome(&cfg.Store.DBPath)

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
