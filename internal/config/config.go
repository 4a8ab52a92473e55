// Package config loads and validates the YAML configuration for the server
// and the CLI defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/khirfan/makeitbig/internal/models"
)

// Loader handles loading and validating YAML configuration files.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Default returns the configuration used when no file is given.
func Default() *models.Config {
	cfg := &models.Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file, validates it and fills
// unset fields with defaults.
func (l *Loader) Load(configPath string) (*models.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return l.Parse(data)
}

// Parse parses YAML configuration bytes.
func (l *Loader) Parse(data []byte) (*models.Config, error) {
	var cfg models.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate checks the raw configuration before defaults are applied.
func (l *Loader) Validate(cfg *models.Config) error {
	if cfg.Server.MaxConcurrent < 0 {
		return fmt.Errorf("server.max_concurrent must not be negative")
	}
	if cfg.Limits.MaxUploadMB < 0 {
		return fmt.Errorf("limits.max_upload_mb must not be negative")
	}
	if cfg.Limits.Timeout < 0 {
		return fmt.Errorf("limits.timeout must not be negative")
	}
	if cfg.Limits.Workers < 0 {
		return fmt.Errorf("limits.workers must not be negative")
	}
	if cfg.Defaults.PrinterBedSize < 0 {
		return fmt.Errorf("defaults.printer_bed_size must not be negative")
	}
	if cfg.Defaults.SafetyMargin < 0 {
		return fmt.Errorf("defaults.safety_margin must not be negative")
	}
	if a := cfg.Defaults.HeightAxis; a != "" && a != "x" && a != "y" && a != "z" {
		return fmt.Errorf("defaults.height_axis must be x, y or z, got %q", a)
	}
	return nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MaxConcurrent == 0 {
		cfg.Server.MaxConcurrent = 4
	}
	if cfg.Defaults.PrinterBedSize == 0 {
		cfg.Defaults.PrinterBedSize = 300
	}
	if cfg.Defaults.SafetyMargin == 0 {
		cfg.Defaults.SafetyMargin = 5
	}
	if cfg.Defaults.HeightAxis == "" {
		cfg.Defaults.HeightAxis = "z"
	}
}
