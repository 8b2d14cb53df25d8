package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		SiteHost:              "localhost",
		Page:                  "/",
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:              "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(c *Config) {}, nil},
		{"base URL override", func(c *Config) { c.BaseURL = "http://localhost:9000" }, nil},
		{"base URL without scheme", func(c *Config) { c.BaseURL = "localhost:9000" }, ErrInvalidBaseURL},
		{"base URL garbage", func(c *Config) { c.BaseURL = "://" }, ErrInvalidBaseURL},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -5 }, ErrInvalidTimeout},
		{"huge timeout", func(c *Config) { c.RequestTimeoutSeconds = 100000 }, ErrInvalidTimeout},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBindEnv_CoversEveryKey(t *testing.T) {
	tests := []struct {
		envVar string
		value  string
		check  func(*Config) bool
	}{
		{"BOOKCHAT_BASE_URL", "http://backend:9000", func(c *Config) bool { return c.BaseURL == "http://backend:9000" }},
		{"BOOKCHAT_SITE_HOST", "textbook.example.com", func(c *Config) bool { return c.SiteHost == "textbook.example.com" }},
		{"BOOKCHAT_PAGE", "/docs/ch1", func(c *Config) bool { return c.Page == "/docs/ch1" }},
		{"BOOKCHAT_STATE_DIR", "/tmp/state", func(c *Config) bool { return c.StateDir == "/tmp/state" }},
		{"BOOKCHAT_REQUEST_TIMEOUT_SECONDS", "45", func(c *Config) bool { return c.RequestTimeoutSeconds == 45 }},
		{"BOOKCHAT_LOG_LEVEL", "debug", func(c *Config) bool { return c.LogLevel == "debug" }},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			v := viper.New()
			setDefaults(v, "/tmp/default-dir")
			bindEnv(v)

			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !tt.check(&cfg) {
				t.Errorf("%s=%s did not reach the config: %+v", tt.envVar, tt.value, cfg)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level
			got, err := cfg.SlogLevel()
			if err != nil {
				t.Fatalf("SlogLevel: %v", err)
			}
			if got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
