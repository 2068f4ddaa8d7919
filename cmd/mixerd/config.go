// config.go - Configuration management for the mixer daemon
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mixer/internal/mixer"
)

// Config represents the daemon configuration
type Config struct {
	// Server settings
	ListenAddr string `yaml:"listen_addr"`

	// Mixer policy applied on first start (ignored once a snapshot exists)
	Owner           string `yaml:"owner"`
	FeeBasisPoints  uint16 `yaml:"fee_basis_points"`
	MinDelaySeconds uint64 `yaml:"min_delay_seconds"`

	// File paths
	SnapshotPath string `yaml:"snapshot_path"`
	KeyDir       string `yaml:"key_dir"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Rate limiting
	RateLimitTokens int `yaml:"rate_limit_tokens"`
	RateLimitRefill int `yaml:"rate_limit_refill_per_second"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8480",
		Owner:           "operator.mixer",
		FeeBasisPoints:  100,
		MinDelaySeconds: mixer.DefaultMinDelay,
		SnapshotPath:    "mixer-state.json",
		KeyDir:          "keys",
		LogLevel:        "info",
		LogFile:         "",
		RateLimitTokens: 20,
		RateLimitRefill: 5,
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var config Config
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return &config, nil
	}

	// Create default config and save it
	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner must be set")
	}
	if c.FeeBasisPoints > mixer.MaxFeeBasisPoints {
		return fmt.Errorf("fee_basis_points must not exceed %d", mixer.MaxFeeBasisPoints)
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path must be set")
	}
	if c.KeyDir == "" {
		return fmt.Errorf("key_dir must be set")
	}
	if c.RateLimitTokens <= 0 {
		return fmt.Errorf("rate_limit_tokens must be positive")
	}
	if c.RateLimitRefill <= 0 {
		return fmt.Errorf("rate_limit_refill_per_second must be positive")
	}
	return nil
}
