// Package config loads the server configuration from YAML with sensible
// defaults. API keys are intentionally absent: the model SDKs read them from
// their standard environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" or "1h" parse via
// time.ParseDuration.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the top-level server configuration.
type Config struct {
	Addr    string        `yaml:"addr"`
	Model   ModelConfig   `yaml:"model"`
	Agent   AgentConfig   `yaml:"agent"`
	Session SessionConfig `yaml:"session"`
	Tools   ToolsConfig   `yaml:"tools"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects and tunes the reasoning model provider.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "anthropic"
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig tunes the turn loop.
type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	Instructions  string `yaml:"instructions"`
}

// SessionConfig selects the history backend.
type SessionConfig struct {
	Backend string      `yaml:"backend"` // "memory" or "redis"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// ToolsConfig overrides tool upstream endpoints, mainly for testing and
// air-gapped deployments.
type ToolsConfig struct {
	FXBaseURL     string   `yaml:"fx_base_url"`
	CryptoBaseURL string   `yaml:"crypto_base_url"`
	Timeout       Duration `yaml:"timeout"`
}

// LoggingConfig tunes log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Addr: ":8080",
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0,
		},
		Agent: AgentConfig{
			MaxIterations: 10,
		},
		Session: SessionConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Tools: ToolsConfig{
			Timeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged. AGENTCHAT_ADDR overrides the listen address.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if addr := os.Getenv("AGENTCHAT_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the wiring layer cannot honor.
func (c Config) Validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}
	return nil
}
