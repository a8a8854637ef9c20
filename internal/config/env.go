package config

import (
	"os"
	"strconv"
)

// LoadFromEnv applies RISKD_* environment overrides on top of cfg.
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("RISKD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if level := os.Getenv("RISKD_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}

	if dir := os.Getenv("RISKD_ARTIFACT_DIR"); dir != "" {
		cfg.Artifacts.Dir = dir
	}

	if watch := os.Getenv("RISKD_WATCH_ARTIFACTS"); watch != "" {
		if b, err := strconv.ParseBool(watch); err == nil {
			cfg.Artifacts.Watch = b
		}
	}

	if estimator := os.Getenv("RISKD_ESTIMATOR"); estimator != "" {
		cfg.Training.Estimator = estimator
	}

	if rps := os.Getenv("RISKD_REQUESTS_PER_SECOND"); rps != "" {
		if n, err := strconv.Atoi(rps); err == nil {
			cfg.Server.RequestsPerSecond = n
		}
	}
}
