// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the mail sink.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	SMTP    SMTPConfig    `yaml:"smtp"`
	Store   StoreConfig   `yaml:"store"`
	Relay   RelayConfig   `yaml:"relay"`
	Logging LoggingConfig `yaml:"logging"`
}

// SMTPConfig holds SMTP listener configuration.
type SMTPConfig struct {
	Port     int    `yaml:"port"`
	Hostname string `yaml:"hostname"`
}

// StoreConfig holds message persistence configuration.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// RelayConfig holds the optional AWS SES relay configuration. The relay is
// enabled only when Region and Sender are both set.
type RelayConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Sender          string `yaml:"sender"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RelayConfigured returns true if the SES relay credentials are set.
func (c *Config) RelayConfigured() bool {
	return c.Relay.Region != "" && c.Relay.Sender != ""
}

// ListenAddr returns the TCP listen address derived from the port.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.SMTP.Port)
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.SMTP.Port)
	}
	return nil
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.SMTP.Port = 2525
	c.SMTP.Hostname = "localhost"
	c.Store.Dir = "messages"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() error {
	if v := os.Getenv("MAILSINK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAILSINK_PORT %q: %w", v, err)
		}
		c.SMTP.Port = port
	}
	if v := os.Getenv("MAILSINK_HOSTNAME"); v != "" {
		c.SMTP.Hostname = v
	}
	if v := os.Getenv("MAILSINK_STORE_DIR"); v != "" {
		c.Store.Dir = v
	}

	if v := os.Getenv("RELAY_REGION"); v != "" {
		c.Relay.Region = v
	}
	if v := os.Getenv("RELAY_ACCESS_KEY_ID"); v != "" {
		c.Relay.AccessKeyID = v
	}
	if v := os.Getenv("RELAY_SECRET_ACCESS_KEY"); v != "" {
		c.Relay.SecretAccessKey = v
	}
	if v := os.Getenv("RELAY_SENDER"); v != "" {
		c.Relay.Sender = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}
