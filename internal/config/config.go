// Package config loads the run configuration from a YAML file.
// Environment references like ${TIINGO_API_KEY} are expanded before
// parsing so secrets stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cef-signal/internal/domain"
)

// Config is the full run configuration.
type Config struct {
	Tiingo struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"tiingo"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	ClickHouse struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"clickhouse"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Pairs []PairConfig `yaml:"pairs"`
}

// PairConfig is one fund/NAV-proxy symbol pair.
type PairConfig struct {
	Ticker    string `yaml:"ticker"`
	NAVSymbol string `yaml:"nav_symbol"`
}

// Load reads, env-expands, parses and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Environment always wins for the API key so CI and cron setups
	// don't need it in the file at all.
	if key := os.Getenv("TIINGO_API_KEY"); key != "" {
		cfg.Tiingo.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Tiingo.APIKey == "" {
		return fmt.Errorf("tiingo.api_key is required (or set TIINGO_API_KEY)")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.DSN == "" {
		return fmt.Errorf("clickhouse.dsn is required when clickhouse is enabled")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one instrument pair is required")
	}
	for i, p := range c.Pairs {
		if p.Ticker == "" || p.NAVSymbol == "" {
			return fmt.Errorf("pair %d: ticker and nav_symbol are both required", i)
		}
	}
	return nil
}

// InstrumentPairs converts configured pairs to domain pairs.
func (c *Config) InstrumentPairs() []domain.InstrumentPair {
	pairs := make([]domain.InstrumentPair, len(c.Pairs))
	for i, p := range c.Pairs {
		pairs[i] = domain.InstrumentPair{Ticker: p.Ticker, NAVSymbol: p.NAVSymbol}
	}
	return pairs
}
