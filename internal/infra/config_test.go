package infra

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: papertrader
  version: "1.0.0"
trading:
  initial_balance: 50000
  max_positions: 5
  max_risk_per_trade: 0.02
  min_confidence: 0.7
pricing:
  provider: coingecko
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Trading.InitialBalance != 50000 {
		t.Errorf("initial_balance = %v, want 50000", cfg.Trading.InitialBalance)
	}
	if cfg.Trading.MaxPositions != 5 {
		t.Errorf("max_positions = %d, want 5", cfg.Trading.MaxPositions)
	}
	if cfg.Trading.MaxRiskPerTrade != 0.02 {
		t.Errorf("max_risk_per_trade = %v, want 0.02", cfg.Trading.MaxRiskPerTrade)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: papertrader
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Trading.InitialBalance != 100000 {
		t.Errorf("default initial_balance = %v, want 100000", cfg.Trading.InitialBalance)
	}
	if cfg.Trading.MaxPositions != 10 {
		t.Errorf("default max_positions = %d, want 10", cfg.Trading.MaxPositions)
	}
	if cfg.Trading.MinConfidence != 0.6 {
		t.Errorf("default min_confidence = %v, want 0.6", cfg.Trading.MinConfidence)
	}
	if cfg.Trading.StopLossPct != 0.05 {
		t.Errorf("default stop_loss_pct = %v, want 0.05", cfg.Trading.StopLossPct)
	}
	if cfg.Trading.RefreshIntervalSec != 30 {
		t.Errorf("default refresh_interval_sec = %d, want 30", cfg.Trading.RefreshIntervalSec)
	}
	if cfg.Pricing.Provider != "coingecko" {
		t.Errorf("default provider = %q, want coingecko", cfg.Pricing.Provider)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PAPERTRADER_LOG_LEVEL", "error")
	t.Setenv("PAPERTRADER_DB_PATH", "/tmp/override.db")

	path := writeConfig(t, `
logging:
  level: info
storage:
  db_path: from_file.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q, env must win", cfg.Logging.Level)
	}
	if cfg.Storage.DBPath != "/tmp/override.db" {
		t.Errorf("db_path = %q, env must win", cfg.Storage.DBPath)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"risk above 1", func(c *Config) { c.Trading.MaxRiskPerTrade = 1.5 }, true},
		{"confidence above 1", func(c *Config) { c.Trading.MinConfidence = 2 }, true},
		{"stop loss full", func(c *Config) { c.Trading.StopLossPct = 1 }, true},
		{"unknown provider", func(c *Config) { c.Pricing.Provider = "kraken" }, true},
		{"binance needs symbols", func(c *Config) {
			c.Pricing.Provider = "binance"
			c.Pricing.Symbols = nil
		}, true},
		{"binance with symbols", func(c *Config) {
			c.Pricing.Provider = "binance"
			c.Pricing.Symbols = []string{"BTC"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
