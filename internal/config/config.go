package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ChipPulse/internal/model"
)

// defaultTickers is the NYSE semiconductor basket served when no tickers are
// configured.
var defaultTickers = []string{
	"AMD", "INTC", "NVDA", "TSM", "QCOM", "TXN", "AMAT", "ASML",
	"MU", "LRCX", "ADI", "MCHP", "KLAC", "NXPI", "ON",
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Basket struct {
		Tickers       []string `yaml:"tickers"`
		DefaultPeriod string   `yaml:"default_period"`
		IntervalDays  int      `yaml:"interval_days"`
	} `yaml:"basket"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		Enabled     bool   `yaml:"enabled"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TWELVEDATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Basket.Tickers) == 0 {
		cfg.Basket.Tickers = append([]string(nil), defaultTickers...)
	}
	if cfg.Basket.DefaultPeriod == "" {
		cfg.Basket.DefaultPeriod = "1y"
	}
	if cfg.Basket.IntervalDays == 0 {
		cfg.Basket.IntervalDays = 2
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/chippulse.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Basket.Tickers) == 0 {
		return fmt.Errorf("basket.tickers must not be empty")
	}
	if _, err := model.ParsePeriod(c.Basket.DefaultPeriod); err != nil {
		return fmt.Errorf("basket.default_period: %w", err)
	}
	if c.Basket.IntervalDays < 1 {
		return fmt.Errorf("basket.interval_days must be at least 1")
	}
	if c.DataSource.BaseURL != "" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required when base_url is set")
	}
	return nil
}
