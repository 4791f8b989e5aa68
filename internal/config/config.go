// Package config loads the service configuration from a YAML file, filling
// defaults and validating centrally so the rest of the code can assume a
// well-formed config.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the wheel service.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	Database DatabaseConfig `yaml:"database"`
	Remote   RemoteConfig   `yaml:"remote"`
	Wheel    WheelConfig    `yaml:"wheel"`
	History  HistoryConfig  `yaml:"history"`
}

// DatabaseConfig configures the local SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RemoteConfig configures the optional key-value sync service.
type RemoteConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token,omitempty"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// WheelConfig defines the gesture coordinate space for live sessions. The
// values mirror the canvas geometry of the browser widget.
type WheelConfig struct {
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Radius  float64 `yaml:"radius"`
}

// HistoryConfig configures draw history listing.
type HistoryConfig struct {
	PageSize int `yaml:"page_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		Database: DatabaseConfig{Path: "luckydraw.db"},
		Remote:   RemoteConfig{TimeoutMS: 5000},
		Wheel:    WheelConfig{CenterX: 160, CenterY: 160, Radius: 160},
		History:  HistoryConfig{PageSize: 50},
	}
}

// Load reads the config file at path. An empty path returns the defaults; a
// present file is merged over them.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Remote.TimeoutMS <= 0 {
		c.Remote.TimeoutMS = d.Remote.TimeoutMS
	}
	if c.Wheel.CenterX == 0 {
		c.Wheel.CenterX = d.Wheel.CenterX
	}
	if c.Wheel.CenterY == 0 {
		c.Wheel.CenterY = d.Wheel.CenterY
	}
	if c.Wheel.Radius <= 0 {
		c.Wheel.Radius = d.Wheel.Radius
	}
	if c.History.PageSize <= 0 {
		c.History.PageSize = d.History.PageSize
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Remote.Enabled && c.Remote.BaseURL == "" {
		return errors.New("remote.base_url is required when remote sync is enabled")
	}
	if c.Wheel.Radius <= 0 {
		return errors.New("wheel.radius must be positive")
	}
	if c.History.PageSize <= 0 || c.History.PageSize > 500 {
		return errors.New("history.page_size must be in 1..500")
	}
	return nil
}
