// Package config handles configuration loading for the EventSub demo binary.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// searchPathsFunc is overridden in tests.
var searchPathsFunc = DefaultSearchPaths

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/eventsub-demo/config.yaml, /config/config.yaml,
// /etc/eventsub-demo/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "eventsub-demo", "config.yaml"))
	}

	paths = append(paths, "/config/config.yaml") // Container convention
	paths = append(paths, "/etc/eventsub-demo/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches searchPathsFunc() and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	paths := searchPathsFunc()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", paths)
}

// Config holds all eventsub-demo configuration.
type Config struct {
	EventSub   EventSubConfig   `yaml:"eventsub"`
	REST       RESTConfig       `yaml:"rest"`
	Controller ControllerConfig `yaml:"controller"`
	LogLevel   string           `yaml:"log_level"`
}

// EventSubConfig defines the WebSocket endpoint a Session connects to.
type EventSubConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	UserAgent string `yaml:"user_agent"`
}

// RESTConfig defines the Twitch Helix credentials used to create and
// delete subscriptions.
type RESTConfig struct {
	BaseURL     string `yaml:"base_url"`
	ClientID    string `yaml:"client_id"`
	AccessToken string `yaml:"access_token"`
}

// ControllerConfig defines pool sizing and retry behavior.
type ControllerConfig struct {
	MaxSessions                int           `yaml:"max_sessions"`
	MaxSubscriptionsPerSession int           `yaml:"max_subscriptions_per_session"`
	BackoffInitial             time.Duration `yaml:"backoff_initial"`
	BackoffMax                 time.Duration `yaml:"backoff_max"`
}

// Configured reports whether REST credentials needed to call Helix are
// present. A partial configuration is treated as unconfigured.
func (c RESTConfig) Configured() bool {
	return c.BaseURL != "" && c.ClientID != "" && c.AccessToken != ""
}

// Load reads configuration from a YAML file, expands environment
// variables, applies defaults for any unset fields, and validates
// the result. After Load returns successfully, all fields are usable
// without additional nil/empty checks.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${TWITCH_ACCESS_TOKEN}). This is
	// a convenience for container deployments; the recommended approach is
	// to put values directly in the config file.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
// Called automatically by Load. After this, callers can read any field
// without checking for empty strings or zero values.
func (c *Config) applyDefaults() {
	if c.EventSub.Host == "" {
		c.EventSub.Host = "eventsub.wss.twitch.tv"
	}
	if c.EventSub.Port == 0 {
		c.EventSub.Port = 443
	}
	if c.EventSub.Path == "" {
		c.EventSub.Path = "/ws"
	}
	if c.REST.BaseURL == "" {
		c.REST.BaseURL = "https://api.twitch.tv/helix"
	}
	if c.Controller.MaxSessions == 0 {
		c.Controller.MaxSessions = 3
	}
	if c.Controller.MaxSubscriptionsPerSession == 0 {
		c.Controller.MaxSubscriptionsPerSession = 100
	}
	if c.Controller.BackoffInitial == 0 {
		c.Controller.BackoffInitial = 2 * time.Second
	}
	if c.Controller.BackoffMax == 0 {
		c.Controller.BackoffMax = 60 * time.Second
	}
}

// Validate checks that the configuration is internally consistent.
// It runs after applyDefaults, so it can assume defaults are populated.
// Returns an error describing the first problem found, or nil.
func (c *Config) Validate() error {
	if c.EventSub.Port < 1 || c.EventSub.Port > 65535 {
		return fmt.Errorf("eventsub.port %d out of range (1-65535)", c.EventSub.Port)
	}
	if c.Controller.MaxSessions < 1 {
		return fmt.Errorf("controller.max_sessions must be >= 1")
	}
	if c.Controller.BackoffMax < c.Controller.BackoffInitial {
		return fmt.Errorf("controller.backoff_max must be >= backoff_initial")
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a default configuration pointed at production Twitch
// EventSub and Helix endpoints. All defaults are already applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
