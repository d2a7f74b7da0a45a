package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendFile   = "file"
)

// Scheduling-time policies applied when a post is scheduled without a time.
const (
	ScheduleDefaultNow     = "now"
	ScheduleDefaultRequire = "require"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig
	Session   SessionConfig
	Content   ContentConfig
	Chat      ChatConfig
	Bridge    BridgeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL   string        `envconfig:"BIZMATE_API_URL" default:"http://localhost:8000"`
	Timeout   time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	UserAgent string        `envconfig:"API_USER_AGENT" default:"BizMate-Core/1.0"`
	// RequestsPerSecond of zero disables client-side limiting.
	RequestsPerSecond float64 `envconfig:"API_RPS" default:"0"`
}

// SessionConfig holds session token storage settings.
type SessionConfig struct {
	Backend string `envconfig:"SESSION_BACKEND" default:"memory"`
	Path    string `envconfig:"SESSION_FILE" default:"./data/session.yaml"`
}

// ContentConfig holds content workflow settings.
type ContentConfig struct {
	Platform        string `envconfig:"CONTENT_PLATFORM" default:"Instagram"`
	ScheduleDefault string `envconfig:"CONTENT_SCHEDULE_DEFAULT" default:"now"`
}

// ChatConfig holds chat session settings.
type ChatConfig struct {
	Platform string `envconfig:"CHAT_PLATFORM" default:"Web Simulation"`
	Greeting string `envconfig:"CHAT_GREETING" default:"Hello! I am your AI Sales Agent. How can I help you today?"`
}

// BridgeConfig holds the local UI bridge settings.
type BridgeConfig struct {
	Host         string   `envconfig:"BRIDGE_HOST" default:"127.0.0.1"`
	Port         string   `envconfig:"BRIDGE_PORT" default:"8787"`
	AllowOrigins []string `envconfig:"BRIDGE_ALLOW_ORIGINS" default:"http://localhost:3000"`
	Sanitize     bool     `envconfig:"BRIDGE_SANITIZE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds bridge rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	Enabled             bool          `envconfig:"BREAKER_ENABLED" default:"true"`
	ConsecutiveFailures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	Timeout             time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   30 * time.Second,
			UserAgent: "BizMate-Core/1.0",
		},
		Session: SessionConfig{
			Backend: SessionBackendMemory,
			Path:    "./data/session.yaml",
		},
		Content: ContentConfig{
			Platform:        "Instagram",
			ScheduleDefault: ScheduleDefaultNow,
		},
		Chat: ChatConfig{
			Platform: "Web Simulation",
			Greeting: "Hello! I am your AI Sales Agent. How can I help you today?",
		},
		Bridge: BridgeConfig{
			Host:         "127.0.0.1",
			Port:         "8787",
			AllowOrigins: []string{"http://localhost:3000"},
			Sanitize:     true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
		},
	}
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("BIZMATE_API_URL cannot be empty")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("API_RPS must be >= 0")
	}
	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendFile:
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty with the file backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.Content.ScheduleDefault {
	case ScheduleDefaultNow, ScheduleDefaultRequire:
	default:
		return fmt.Errorf("unknown CONTENT_SCHEDULE_DEFAULT %q", c.Content.ScheduleDefault)
	}
	if c.Bridge.Port == "" {
		return fmt.Errorf("BRIDGE_PORT cannot be empty")
	}
	return nil
}

// BridgeAddr returns the host:port the bridge listens on.
func (c *Config) BridgeAddr() string {
	return c.Bridge.Host + ":" + c.Bridge.Port
}
