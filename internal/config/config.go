package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort     = 8080
	DefaultCruxEndpoint = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"
	DefaultCruxTimeout  = 10 * time.Second
	DefaultAPIKeyEnv    = "CRUX_API_KEY"
)

// Config is the top-level configuration for cruxlens-server.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Crux   CruxConfig   `yaml:"crux"`
	Notify NotifyConfig `yaml:"notify"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// HTTPPort is the port the JSON API listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// CruxConfig holds the upstream Chrome UX Report API settings.
type CruxConfig struct {
	// Endpoint is the full URL of the CrUX queryRecord endpoint.
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv is the name of the environment variable that holds the
	// Google API key sent as the `key` query parameter. The key itself is
	// never stored in the config file.
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds each upstream request (default 10s).
	Timeout time.Duration `yaml:"timeout"`
}

// Key returns the API key resolved from the environment.
// Returns empty string if APIKeyEnv is unset or the variable is not found.
func (c CruxConfig) Key() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// NotifyConfig holds recommendation webhook delivery targets.
type NotifyConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: "info",
		},
		Crux: CruxConfig{
			Endpoint:  DefaultCruxEndpoint,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultCruxTimeout,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.LogLevel {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", cfg.Server.LogLevel)
	}
	if cfg.Crux.Endpoint == "" {
		return fmt.Errorf("crux.endpoint is required")
	}
	if cfg.Crux.Timeout <= 0 {
		return fmt.Errorf("crux.timeout must be positive")
	}
	for i, wh := range cfg.Notify.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("notify.webhooks[%d]: unknown type %q: want slack|teams|http", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("notify.webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}
