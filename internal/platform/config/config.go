// Package config loads client configuration from the environment, optionally
// layered over a YAML file so main stays lean.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything the CLI and transport need.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	LogLevel    string        `yaml:"log_level"`
	MetricsAddr string        `yaml:"metrics_addr"`
	DeviceLabel string        `yaml:"device_label"`
}

func defaults() Config {
	return Config{
		BaseURL:  "http://localhost:8480",
		Timeout:  15 * time.Second,
		LogLevel: "info",
	}
}

// Load builds a Config from an optional YAML file path plus environment
// overrides. Environment always wins over the file.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := os.Getenv("MOVIESNOW_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MOVIESNOW_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse MOVIESNOW_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("MOVIESNOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MOVIESNOW_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("MOVIESNOW_DEVICE_LABEL"); v != "" {
		cfg.DeviceLabel = v
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults().Timeout
	}
	return cfg, nil
}
