package agent

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the agent's YAML configuration. Intervals are expressed in
// seconds so the file stays friendly to hand editing.
type Config struct {
	BackendURL    string `yaml:"backend_url"`
	Token         string `yaml:"token"`
	TerminalID    string `yaml:"terminal_id"`
	AccountNumber string `yaml:"account_number"`
	Broker        string `yaml:"broker"`
	Build         string `yaml:"build"`

	Symbols []string `yaml:"symbols"`

	// OptionSymbols, when non-empty, is pushed as-is and discovery is
	// skipped entirely.
	OptionSymbols []string `yaml:"option_symbols"`

	HeartbeatIntervalSeconds int `yaml:"heartbeat_interval_seconds"`
	QuotesIntervalSeconds    int `yaml:"quotes_interval_seconds"`
	PollIntervalSeconds      int `yaml:"poll_interval_seconds"`

	DiscoveryLimit int `yaml:"discovery_limit"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: failed to read %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("LoadConfig: failed to parse %s: %w", path, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.HeartbeatIntervalSeconds <= 0 {
		c.HeartbeatIntervalSeconds = 30
	}

	if c.QuotesIntervalSeconds <= 0 {
		c.QuotesIntervalSeconds = 5
	}

	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 5
	}

	if c.DiscoveryLimit <= 0 {
		c.DiscoveryLimit = 200
	}
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}

	if c.Token == "" {
		return fmt.Errorf("token is required")
	}

	if c.TerminalID == "" {
		return fmt.Errorf("terminal_id is required")
	}

	if c.AccountNumber == "" {
		return fmt.Errorf("account_number is required")
	}

	return nil
}

func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

func (c *Config) QuotesInterval() time.Duration {
	return time.Duration(c.QuotesIntervalSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
