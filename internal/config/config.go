package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jgoulah/cgmreport/internal/metrics"
)

// Config holds the application configuration
type Config struct {
	Inputs        InputConfig   `yaml:"inputs"`
	Output        string        `yaml:"output,omitempty"` // Result CSV path (fallback: Result.csv)
	Metrics       MetricsConfig `yaml:"metrics,omitempty"`
	MQTT          MQTTConfig    `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig      `yaml:"home_assistant,omitempty"`
}

// InputConfig names the two exports for the patient
type InputConfig struct {
	CGM     string `yaml:"cgm,omitempty"`     // fallback: CGMData.csv
	Insulin string `yaml:"insulin,omitempty"` // fallback: InsulinData.csv
}

// MetricsConfig holds metric engine settings
type MetricsConfig struct {
	Normalization string `yaml:"normalization,omitempty"` // "fixed" (default) or "per-window"
	EmptyWindow   string `yaml:"empty_window,omitempty"`  // "nan" (default), "error" or "zero"
}

// MQTTConfig holds MQTT broker settings
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // fallback: cgmreport
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://yourdomain.local:5050"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.time_in_range"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// May hold broker and Home Assistant credentials
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Validate checks settings that would otherwise fail mid-run
func (c *Config) Validate() error {
	return c.MetricOptions().Validate()
}

// GetCGMPath returns the CGM export path, defaulting to CGMData.csv
func (c *Config) GetCGMPath() string {
	if c.Inputs.CGM == "" {
		return "CGMData.csv"
	}
	return c.Inputs.CGM
}

// GetInsulinPath returns the insulin export path, defaulting to InsulinData.csv
func (c *Config) GetInsulinPath() string {
	if c.Inputs.Insulin == "" {
		return "InsulinData.csv"
	}
	return c.Inputs.Insulin
}

// GetOutputPath returns the result file path, defaulting to Result.csv
func (c *Config) GetOutputPath() string {
	if c.Output == "" {
		return "Result.csv"
	}
	return c.Output
}

// GetTopicPrefix returns the MQTT topic prefix, defaulting to cgmreport
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "cgmreport"
	}
	return c.MQTT.TopicPrefix
}

// MetricOptions converts the metrics section into engine options
func (c *Config) MetricOptions() metrics.Options {
	opts := metrics.Options{
		Normalization: metrics.Normalization(c.Metrics.Normalization),
		EmptyWindow:   metrics.EmptyWindowPolicy(c.Metrics.EmptyWindow),
	}
	if opts.Normalization == "" {
		opts.Normalization = metrics.NormalizeFixed
	}
	if opts.EmptyWindow == "" {
		opts.EmptyWindow = metrics.EmptyWindowNaN
	}
	return opts
}
