package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// API config
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Zero(t, cfg.API.RequestsPerSecond)

	// Session config
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)

	// Content config
	assert.Equal(t, "Instagram", cfg.Content.Platform)
	assert.Equal(t, ScheduleDefaultNow, cfg.Content.ScheduleDefault)

	// Chat config
	assert.Equal(t, "Web Simulation", cfg.Chat.Platform)
	assert.NotEmpty(t, cfg.Chat.Greeting)

	// Bridge config
	assert.Equal(t, "127.0.0.1:8787", cfg.BridgeAddr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Bridge.AllowOrigins)
	assert.True(t, cfg.Bridge.Sanitize)

	// Breaker config
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)

	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesTagDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Chat.Greeting, cfg.Chat.Greeting)
	assert.Equal(t, def.Bridge.AllowOrigins, cfg.Bridge.AllowOrigins)
	assert.Equal(t, def.Breaker, cfg.Breaker)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"BIZMATE_API_URL":          "https://api.bizmate.test",
		"API_TIMEOUT":              "5s",
		"API_RPS":                  "2.5",
		"SESSION_BACKEND":          "file",
		"SESSION_FILE":             "/tmp/bizmate/session.yaml",
		"CONTENT_PLATFORM":         "Facebook",
		"CONTENT_SCHEDULE_DEFAULT": "require",
		"CHAT_PLATFORM":            "WhatsApp",
		"BRIDGE_PORT":              "9999",
		"BRIDGE_ALLOW_ORIGINS":     "http://a.test,http://b.test",
		"LOG_LEVEL":                "debug",
		"LOG_DEV":                  "true",
		"RATE_LIMIT_ENABLED":       "false",
		"BREAKER_FAILURES":         "3",
		"BREAKER_TIMEOUT":          "1m",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.bizmate.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.5, cfg.API.RequestsPerSecond)
	assert.Equal(t, SessionBackendFile, cfg.Session.Backend)
	assert.Equal(t, "/tmp/bizmate/session.yaml", cfg.Session.Path)
	assert.Equal(t, "Facebook", cfg.Content.Platform)
	assert.Equal(t, ScheduleDefaultRequire, cfg.Content.ScheduleDefault)
	assert.Equal(t, "WhatsApp", cfg.Chat.Platform)
	assert.Equal(t, "9999", cfg.Bridge.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Bridge.AllowOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, uint32(3), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, time.Minute, cfg.Breaker.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "BIZMATE_API_URL",
		},
		{
			name:    "unknown session backend",
			mutate:  func(c *Config) { c.Session.Backend = "cookie" },
			wantErr: "SESSION_BACKEND",
		},
		{
			name: "file backend without path",
			mutate: func(c *Config) {
				c.Session.Backend = SessionBackendFile
				c.Session.Path = ""
			},
			wantErr: "SESSION_FILE",
		},
		{
			name:    "unknown schedule policy",
			mutate:  func(c *Config) { c.Content.ScheduleDefault = "tomorrow" },
			wantErr: "CONTENT_SCHEDULE_DEFAULT",
		},
		{
			name:    "negative rps",
			mutate:  func(c *Config) { c.API.RequestsPerSecond = -1 },
			wantErr: "API_RPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOrDefaultOnInvalidEnv(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "cookie")

	cfg := LoadOrDefault()
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
}
