// Package config provides application configuration with multi-source
// priority.
//
// Sources, highest to lowest:
//  1. Environment variables (BOOKCHAT_*)
//  2. Config file (~/.bookchat/config.yaml)
//  3. Default values
//
// Validation is fail-fast: Load returns sentinel errors checkable with
// errors.Is before any component is constructed.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidBaseURL indicates the base URL override is not parseable.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	configDirName = ".bookchat"

	// DefaultTimeoutSeconds bounds a single backend request.
	DefaultTimeoutSeconds = 30

	maxTimeoutSeconds = 300
)

// Config stores application configuration.
type Config struct {
	// BaseURL overrides backend resolution entirely when set.
	BaseURL string `mapstructure:"base_url"`

	// SiteHost is the host the textbook site is served from. "localhost"
	// selects the development backend, anything else the production one.
	SiteHost string `mapstructure:"site_host"`

	// Page is the site page path used as the session's page context.
	Page string `mapstructure:"page"`

	// StateDir holds the persisted session, transcript and browser id.
	StateDir string `mapstructure:"state_dir"`

	// RequestTimeoutSeconds bounds a single backend request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from defaults, the optional config file and
// environment, then validates it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, configDirName)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("base_url", "")
	v.SetDefault("site_host", "localhost")
	v.SetDefault("page", "/")
	v.SetDefault("state_dir", configDir)
	v.SetDefault("request_timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("log_level", "info")
}

func bindEnv(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("base_url", "BOOKCHAT_BASE_URL")
	mustBind("site_host", "BOOKCHAT_SITE_HOST")
	mustBind("page", "BOOKCHAT_PAGE")
	mustBind("state_dir", "BOOKCHAT_STATE_DIR")
	mustBind("request_timeout_seconds", "BOOKCHAT_REQUEST_TIMEOUT_SECONDS")
	mustBind("log_level", "BOOKCHAT_LOG_LEVEL")
}

// Validate checks the configuration and returns sentinel errors on failure.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
		}
	}

	if c.RequestTimeoutSeconds <= 0 || c.RequestTimeoutSeconds > maxTimeoutSeconds {
		return fmt.Errorf("%w: %d (want 1-%d seconds)", ErrInvalidTimeout, c.RequestTimeoutSeconds, maxTimeoutSeconds)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured log level name to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}
