package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. LoadConfig reads the YAML file and
// then applies environment variable overrides.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		InitialBalance            float64 `yaml:"initial_balance"`
		MaxPositions              int     `yaml:"max_positions"`
		MaxRiskPerTrade           float64 `yaml:"max_risk_per_trade"`
		MinConfidence             float64 `yaml:"min_confidence"`
		StopLossPct               float64 `yaml:"stop_loss_pct"`
		TakeProfitConfidenceScale float64 `yaml:"take_profit_confidence_scale"`
		RefreshIntervalSec        int     `yaml:"refresh_interval_sec"`
	} `yaml:"trading"`

	Pricing struct {
		Provider    string   `yaml:"provider"` // "coingecko" or "binance"
		APIURL      string   `yaml:"api_url"`
		CacheTTLSec int      `yaml:"cache_ttl_sec"`
		Symbols     []string `yaml:"symbols"` // streamed symbols for binance
	} `yaml:"pricing"`

	Storage struct {
		DBPath string `yaml:"db_path"` // empty = workspace default
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a runnable configuration without a config file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = AppName
	cfg.App.Version = "dev"
	overrideWithEnv(&cfg)
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Trading.InitialBalance <= 0 {
		c.Trading.InitialBalance = 100000
	}
	if c.Trading.MaxPositions <= 0 {
		c.Trading.MaxPositions = 10
	}
	if c.Trading.MaxRiskPerTrade <= 0 {
		c.Trading.MaxRiskPerTrade = 0.03
	}
	if c.Trading.MinConfidence <= 0 {
		c.Trading.MinConfidence = 0.6
	}
	if c.Trading.StopLossPct <= 0 {
		c.Trading.StopLossPct = 0.05
	}
	if c.Trading.TakeProfitConfidenceScale <= 0 {
		c.Trading.TakeProfitConfidenceScale = 0.2
	}
	if c.Trading.RefreshIntervalSec <= 0 {
		c.Trading.RefreshIntervalSec = 30
	}
	if c.Pricing.Provider == "" {
		c.Pricing.Provider = "coingecko"
	}
	if c.Pricing.CacheTTLSec <= 0 {
		c.Pricing.CacheTTLSec = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Trading.MaxRiskPerTrade > 1 {
		return fmt.Errorf("max_risk_per_trade must be a fraction, got %v", c.Trading.MaxRiskPerTrade)
	}
	if c.Trading.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in (0,1], got %v", c.Trading.MinConfidence)
	}
	if c.Trading.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be a fraction below 1, got %v", c.Trading.StopLossPct)
	}

	switch strings.ToLower(c.Pricing.Provider) {
	case "coingecko":
	case "binance":
		if len(c.Pricing.Symbols) == 0 {
			return fmt.Errorf("binance provider requires at least one symbol to stream")
		}
	default:
		return fmt.Errorf("unknown pricing provider: %s", c.Pricing.Provider)
	}

	return nil
}

// overrideWithEnv applies environment variables over file values.
// Environment always wins so deployments can reconfigure without editing files.
func overrideWithEnv(cfg *Config) {
	if path := os.Getenv("PAPERTRADER_DB_PATH"); path != "" {
		cfg.Storage.DBPath = path
	}
	if level := os.Getenv("PAPERTRADER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if url := os.Getenv("PAPERTRADER_PRICE_API_URL"); url != "" {
		cfg.Pricing.APIURL = url
	}
}
