// Package config provides configuration loading and management for the
// calcium imaging pipeline. It handles loading configuration from YAML
// files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up at a project
// root when no explicit path is given.
const DefaultFilename = "calcium.yaml"

// Config represents the tool configuration loaded from YAML
type Config struct {
	// Projection parameters
	Projection struct {
		// Mode is the default stack reduction: "max" or "mean"
		Mode string `yaml:"mode"`
	} `yaml:"projection"`

	// Smoothing parameters applied to projections before they are written
	Smoothing struct {
		// Enabled toggles Gaussian smoothing of projections
		Enabled bool `yaml:"enabled"`

		// KernelSize is the Gaussian kernel width (odd)
		KernelSize int `yaml:"kernelSize"`

		// Sigma is the Gaussian standard deviation; 0 derives it from
		// the kernel size
		Sigma float64 `yaml:"sigma"`
	} `yaml:"smoothing"`

	// Output parameters
	Output struct {
		// Precision is the number of decimals in CSV outputs
		Precision int `yaml:"precision"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Projection.Mode = "max"

	// 5-tap Gaussian with derived sigma matches the acquisition
	// preprocessing baseline
	cfg.Smoothing.Enabled = false
	cfg.Smoothing.KernelSize = 5
	cfg.Smoothing.Sigma = 0

	cfg.Output.Precision = 4
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
