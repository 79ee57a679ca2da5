// Package config loads and validates the trader's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TraderConfig is the complete configuration for the trader process.
type TraderConfig struct {
	System   SystemConfig   `yaml:"system"`
	NATS     NATSConfig     `yaml:"nats"`
	Strategy StrategyConfig `yaml:"strategy"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SystemConfig contains process-level configuration.
type SystemConfig struct {
	TraderName string `yaml:"trader_name"` // e.g. "TRADER"
	TraderTag  string `yaml:"trader_tag"`  // e.g. "001"
	AccountID  string `yaml:"account_id"`
	Mode       string `yaml:"mode"` // live, simulation
}

// NATSConfig contains the transport endpoints. Market data and execution may
// run on separate clusters; both default to the local server.
type NATSConfig struct {
	MarketDataURL string `yaml:"market_data_url"`
	ExecutionURL  string `yaml:"execution_url"`
}

// StrategyConfig contains the strategy host configuration.
type StrategyConfig struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`

	Symbol     string `yaml:"symbol"`      // e.g. "AUDUSD.FXCM"
	BarPeriod  int    `yaml:"bar_period"`  // e.g. 1
	BarSpec    string `yaml:"bar_spec"`    // e.g. "MINUTE[BID]"
	FastPeriod int    `yaml:"fast_period"` // EMA cross fast period
	SlowPeriod int    `yaml:"slow_period"` // EMA cross slow period
	StopOffset string `yaml:"stop_offset"` // protective stop distance, decimal string
	OrderQty   string `yaml:"order_qty"`   // fixed position size, decimal string

	TickCapacity int `yaml:"tick_capacity"` // per-symbol tick history, 0 = default
	BarCapacity  int `yaml:"bar_capacity"`  // per-bar-type history, 0 = default

	FlattenOnStop     *bool `yaml:"flatten_on_stop"`      // default true
	FlattenOnSLReject *bool `yaml:"flatten_on_sl_reject"` // default true
	CancelAllOnStop   *bool `yaml:"cancel_all_on_stop"`   // default true
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Load reads and validates configuration from a YAML file.
func Load(filepath string) (*TraderConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config TraderConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate checks required fields and fills defaults.
func (c *TraderConfig) Validate() error {
	if c.System.TraderName == "" {
		c.System.TraderName = "TRADER"
	}
	if c.System.TraderTag == "" {
		return fmt.Errorf("system.trader_tag is required")
	}
	if c.System.Mode == "" {
		c.System.Mode = "simulation"
	}
	if c.System.Mode != "live" && c.System.Mode != "simulation" {
		return fmt.Errorf("system.mode must be 'live' or 'simulation'")
	}
	if c.System.Mode == "live" && c.System.AccountID == "" {
		return fmt.Errorf("system.account_id is required in live mode")
	}

	if c.NATS.MarketDataURL == "" {
		c.NATS.MarketDataURL = "nats://127.0.0.1:4222"
	}
	if c.NATS.ExecutionURL == "" {
		c.NATS.ExecutionURL = c.NATS.MarketDataURL
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Tag == "" {
		return fmt.Errorf("strategy.tag is required")
	}
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.FastPeriod <= 0 || c.Strategy.SlowPeriod <= 0 {
		return fmt.Errorf("strategy.fast_period and strategy.slow_period must be positive")
	}
	if c.Strategy.FastPeriod >= c.Strategy.SlowPeriod {
		return fmt.Errorf("strategy.fast_period must be below strategy.slow_period")
	}
	if c.Strategy.BarPeriod <= 0 {
		c.Strategy.BarPeriod = 1
	}
	if c.Strategy.BarSpec == "" {
		c.Strategy.BarSpec = "MINUTE[BID]"
	}
	if c.Strategy.OrderQty == "" {
		return fmt.Errorf("strategy.order_qty is required")
	}
	if c.Strategy.StopOffset == "" {
		return fmt.Errorf("strategy.stop_offset is required")
	}
	if c.Strategy.TickCapacity < 0 || c.Strategy.BarCapacity < 0 {
		return fmt.Errorf("history capacities cannot be negative")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// FlattenOnStopValue returns the gate with its default applied.
func (c *StrategyConfig) FlattenOnStopValue() bool { return boolOrDefault(c.FlattenOnStop, true) }

// FlattenOnSLRejectValue returns the gate with its default applied.
func (c *StrategyConfig) FlattenOnSLRejectValue() bool {
	return boolOrDefault(c.FlattenOnSLReject, true)
}

// CancelAllOnStopValue returns the gate with its default applied.
func (c *StrategyConfig) CancelAllOnStopValue() bool { return boolOrDefault(c.CancelAllOnStop, true) }

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Save writes configuration to a YAML file.
func Save(filepath string, config *TraderConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
