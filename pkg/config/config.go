// Package config provides configuration loading and management for the
// volume engine. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Workers specifies how many slices are filled concurrently
		Workers int `yaml:"workers"`

		// Interpolation selects the ultrasound scan-conversion resampling
		// mode: "nearest" or "bilinear"
		Interpolation string `yaml:"interpolation"`

		// QualityLevel selects the MR normalization strategy: "standard"
		// (min/max) or "high" (percentile-based)
		QualityLevel string `yaml:"qualityLevel"`
	} `yaml:"processing"`

	// Cache parameters
	Cache struct {
		// MaxEntries caps the number of cached volumes; 0 means unbounded
		MaxEntries int `yaml:"maxEntries"`
	} `yaml:"cache"`

	// Output parameters
	Output struct {
		// SaveMPR determines whether reconstructed planes are exported
		SaveMPR bool `yaml:"saveMPR"`

		// MPRDir is the directory where exported planes are written
		MPRDir string `yaml:"mprDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.Interpolation = "bilinear"
	cfg.Processing.QualityLevel = "standard"

	cfg.Cache.MaxEntries = 8

	cfg.Output.SaveMPR = false
	cfg.Output.MPRDir = "mpr_output"
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
	return SaveConfig(DefaultConfig(), configPath)
}
