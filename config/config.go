// Package config loads the fleetop configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration consumed by the CLI and by
// programs embedding the managers.
type Config struct {
	Version     string      `yaml:"version"`
	Region      string      `yaml:"region"`
	Credentials Credentials `yaml:"credentials,omitempty"`

	// AllowAmbient opts in to the SDK's default credential chain when
	// no static key pair is configured.
	AllowAmbient bool `yaml:"allow_ambient"`

	Wait Wait `yaml:"wait,omitempty"`
}

// Credentials is an optional static key pair. Leave empty to rely on
// ambient resolution (with AllowAmbient set).
type Credentials struct {
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	SessionToken    string `yaml:"session_token,omitempty"`
}

// Wait tunes the instance state poll loop.
type Wait struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Load reads and validates a config file, applying defaults for the
// wait settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate ensures required fields are present and the wait settings
// are sane.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if (c.Credentials.AccessKeyID == "") != (c.Credentials.SecretAccessKey == "") {
		return fmt.Errorf("credentials require both access_key_id and secret_access_key")
	}
	if c.Wait.PollInterval <= 0 {
		return fmt.Errorf("wait.poll_interval must be positive")
	}
	if c.Wait.Timeout <= 0 {
		return fmt.Errorf("wait.timeout must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Wait.PollInterval == 0 {
		c.Wait.PollInterval = 5 * time.Second
	}
	if c.Wait.Timeout == 0 {
		c.Wait.Timeout = 5 * time.Minute
	}
}
