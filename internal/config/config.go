// Package config holds service configuration, loaded from an optional YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Training  TrainingConfig  `yaml:"training"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	LogLevel          string `yaml:"log_level"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
	Burst             int    `yaml:"burst"`
}

type ArtifactsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

type TrainingConfig struct {
	// Estimator declares which family this deployment trains with. The
	// choice is a configuration-time decision, not a runtime fallback.
	Estimator string `yaml:"estimator"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8000,
			LogLevel:          "info",
			RequestsPerSecond: 100,
			Burst:             200,
		},
		Artifacts: ArtifactsConfig{
			Dir:   "artifacts",
			Watch: false,
		},
		Training: TrainingConfig{
			Estimator: "logistic_regression",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
