package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Scoring.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %s", cfg.Scoring.Model)
	}
	if cfg.Scoring.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %v", cfg.Scoring.Temperature)
	}
	if cfg.Leaderboard.MinMessages != 3 || cfg.Leaderboard.Limit != 5 {
		t.Errorf("unexpected leaderboard defaults: %+v", cfg.Leaderboard)
	}
	if cfg.Stream.Topic != "chatrank.scores" {
		t.Errorf("unexpected stream topic: %s", cfg.Stream.Topic)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing scoring API key")
	}
	cfg.Scoring.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRequiresChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.APIKey = "sk-test"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no channel is enabled")
	}
	cfg.Channels.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled telegram channel without token")
	}
	cfg.Channels.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateSlackTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.APIKey = "sk-test"
	cfg.Channels.Slack.Enabled = true
	cfg.Channels.Slack.BotToken = "xoxb-test"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for slack channel without app token")
	}
	cfg.Channels.Slack.AppToken = "xapp-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHATRANK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("CHATRANK_SCORING_API_KEY", "sk-env")
	t.Setenv("CHATRANK_SCORING_MODEL", "gpt-4o-mini")
	t.Setenv("CHATRANK_CHANNELS_TELEGRAM_ENABLED", "true")
	t.Setenv("CHATRANK_CHANNELS_TELEGRAM_TOKEN", "123:env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scoring.APIKey != "sk-env" {
		t.Errorf("expected env API key, got %q", cfg.Scoring.APIKey)
	}
	if cfg.Scoring.Model != "gpt-4o-mini" {
		t.Errorf("expected env model, got %q", cfg.Scoring.Model)
	}
	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token != "123:env" {
		t.Errorf("expected telegram channel from env, got %+v", cfg.Channels.Telegram)
	}
}

func TestLoadLegacyEnvFallbacks(t *testing.T) {
	t.Setenv("CHATRANK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("REDPILL_API_KEY", "sk-legacy")
	t.Setenv("BOT_TOKEN", "123:legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scoring.APIKey != "sk-legacy" {
		t.Errorf("expected REDPILL_API_KEY fallback, got %q", cfg.Scoring.APIKey)
	}
	if !cfg.Channels.Telegram.Enabled || cfg.Channels.Telegram.Token != "123:legacy" {
		t.Errorf("expected BOT_TOKEN fallback to enable telegram, got %+v", cfg.Channels.Telegram)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config from legacy env, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"scoring": {"apiKey": "sk-file", "model": "gpt-4o"},
		"channels": {"telegram": {"enabled": true, "token": "123:file"}},
		"leaderboard": {"minMessages": 2, "limit": 10}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHATRANK_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scoring.APIKey != "sk-file" {
		t.Errorf("expected file API key, got %q", cfg.Scoring.APIKey)
	}
	if cfg.Leaderboard.MinMessages != 2 || cfg.Leaderboard.Limit != 10 {
		t.Errorf("unexpected leaderboard config: %+v", cfg.Leaderboard)
	}
}

func TestEnvFileLoading(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env")
	body := "# comment\nexport CHATRANK_TEST_KEY=\"quoted value\"\nCHATRANK_TEST_PLAIN=plain\n"
	if err := os.WriteFile(envPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CHATRANK_ENV_FILE", envPath)
	t.Setenv("CHATRANK_TEST_PLAIN", "already-set")

	LoadEnvFileCandidates()
	t.Cleanup(func() { os.Unsetenv("CHATRANK_TEST_KEY") })

	if got := os.Getenv("CHATRANK_TEST_KEY"); got != "quoted value" {
		t.Errorf("expected quoted value, got %q", got)
	}
	if got := os.Getenv("CHATRANK_TEST_PLAIN"); got != "already-set" {
		t.Errorf("env file must not override process env, got %q", got)
	}
}
