package app

import (
	"errors"
	"fmt"
	"slices"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProfilePath string // hcl file with profile blocks
	ProfileName string // empty selects the only profile of the file

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Overrides applied on top of the profile. Zero workers and a nil
	// Mortal keep the profile's settings.
	Workers int
	Mortal  *bool
	DryRun  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProfilePath == "" {
		return nil, errors.New("ProfilePath is a required configuration field and cannot be empty")
	}
	if cfg.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "" && cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return &cfg, nil
}
