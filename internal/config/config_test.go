package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modqd.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		// moderation dataset snapshot
		"dataset": "/data/tickets.json",
		"api": {"host": "127.0.0.1", "port": 5001, "api_key": "secret"},
		"stats": {"schedule": "@every 15m"}
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset != "/data/tickets.json" {
		t.Errorf("dataset = %q", cfg.Dataset)
	}
	if cfg.API.Port != 5001 || cfg.API.Key != "secret" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Stats.Schedule != "@every 15m" {
		t.Errorf("schedule = %q", cfg.Stats.Schedule)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"dataset": "/data/tickets.json"}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 5001 {
		t.Errorf("default port = %d", cfg.API.Port)
	}
	if cfg.Stats.Schedule != "@every 1h" {
		t.Errorf("default schedule = %q", cfg.Stats.Schedule)
	}
}

func TestLoadMissingDataset(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"api": {"port": 5001}}`)); err == nil {
		t.Fatal("expected error for missing dataset path")
	}
}

func TestLoadBadPort(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"dataset": "x", "api": {"port": -1}}`)); err == nil {
		t.Fatal("expected error for bad port")
	}
}

func TestValidateNotifiers(t *testing.T) {
	cfg := defaults()
	cfg.Dataset = "x"
	cfg.Notifiers.Slack = &SlackConfig{Token: "xoxb-1"}
	if err := cfg.Validate(); err == nil {
		t.Error("slack without channel should fail")
	}

	cfg = defaults()
	cfg.Dataset = "x"
	cfg.Notifiers.Telegram = &TelegramConfig{Token: "123:abc"}
	if err := cfg.Validate(); err == nil {
		t.Error("telegram without chat_id should fail")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MODQ_DATASET", "/data/tickets.json")
	t.Setenv("MODQ_API_PORT", "8081")
	t.Setenv("MODQ_API_KEY", "k")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset != "/data/tickets.json" || cfg.API.Port != 8081 || cfg.API.Key != "k" {
		t.Errorf("cfg = %+v", cfg)
	}
}
