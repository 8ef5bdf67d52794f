package wiki

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	apierrors "github.com/olgasafonova/mediawiki-client/internal/errors"
	"github.com/olgasafonova/mediawiki-client/internal/infra"
)

// DefaultTimeout bounds one HTTP attempt when Config.Timeout is unset
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the client when no user agent is configured
const DefaultUserAgent = "mediawiki-client/1.0 (https://github.com/olgasafonova/mediawiki-client)"

// Config holds MediaWiki connection settings
type Config struct {
	// BaseURL is the wiki API endpoint (e.g., https://wiki.example.com/api.php)
	BaseURL string

	// Username for bot password authentication (empty for anonymous use)
	Username string

	// Password for bot password authentication
	Password string

	// UserAgent identifies the client to the wiki
	UserAgent string

	// Timeout bounds one HTTP attempt; a timed-out attempt is retried.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// RetryDelay is the pause between attempts. Zero means infra.DefaultRetryDelay.
	RetryDelay time.Duration

	// MaxAttempts bounds attempts per call; 0 retries forever
	MaxAttempts int

	// RetryMultiplier grows the delay per retry; <= 1 keeps it fixed
	RetryMultiplier float64

	// MaxRetryDelay caps a grown delay
	MaxRetryDelay time.Duration
}

// DefaultConfig returns a Config with defaults for everything but the endpoint
func DefaultConfig() Config {
	return Config{
		UserAgent:  DefaultUserAgent,
		Timeout:    DefaultTimeout,
		RetryDelay: infra.DefaultRetryDelay,
	}
}

// LoadConfig loads configuration from an optional file and MEDIAWIKI_* environment
// variables, environment taking precedence. The file may be JSON or YAML and may use
// either the long keys (url, user_agent) or the short ones (baseapi, useragent).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDIAWIKI")

	defaults := DefaultConfig()
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("retry_delay", defaults.RetryDelay)
	v.SetDefault("max_attempts", 0)
	v.SetDefault("retry_multiplier", 0)
	v.SetDefault("max_retry_delay", 0)

	for _, key := range []string{
		"url", "username", "password", "user_agent", "timeout",
		"retry_delay", "max_attempts", "retry_multiplier", "max_retry_delay",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		BaseURL:         firstString(v, "url", "baseapi"),
		Username:        v.GetString("username"),
		Password:        v.GetString("password"),
		UserAgent:       firstString(v, "user_agent", "useragent"),
		Timeout:         v.GetDuration("timeout"),
		RetryDelay:      v.GetDuration("retry_delay"),
		MaxAttempts:     v.GetInt("max_attempts"),
		RetryMultiplier: v.GetFloat64("retry_multiplier"),
		MaxRetryDelay:   v.GetDuration("max_retry_delay"),
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstString(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if s := v.GetString(key); s != "" {
			return s
		}
	}
	return ""
}

// Validate checks the config for values the session cannot work with
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return apierrors.NewValidationError("url", "", "is required (set MEDIAWIKI_URL or url in the config file)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apierrors.NewValidationError("url", c.BaseURL, "must be an absolute http or https URL")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return apierrors.NewValidationError("url", c.BaseURL, "must not carry a query string or fragment")
	}
	if c.UserAgent == "" {
		return apierrors.NewValidationError("user_agent", "", "is required")
	}
	if c.Username != "" && c.Password == "" {
		return apierrors.NewValidationError("password", "", "is required when username is set")
	}
	if c.Timeout < 0 {
		return apierrors.NewValidationError("timeout", c.Timeout.String(), "must not be negative")
	}
	if c.RetryDelay < 0 {
		return apierrors.NewValidationError("retry_delay", c.RetryDelay.String(), "must not be negative")
	}
	if c.MaxAttempts < 0 {
		return apierrors.NewValidationError("max_attempts", fmt.Sprint(c.MaxAttempts), "must not be negative")
	}
	return nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// withDefaults returns a copy with zero durations replaced by their defaults
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = infra.DefaultRetryDelay
	}
	return c
}

// RetryPolicy derives the transport retry policy from the config. An unset
// RetryDelay falls back to infra.DefaultRetryDelay.
func (c *Config) RetryPolicy() infra.RetryPolicy {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = infra.DefaultRetryDelay
	}
	return infra.RetryPolicy{
		Delay:       delay,
		MaxAttempts: c.MaxAttempts,
		Multiplier:  c.RetryMultiplier,
		MaxDelay:    c.MaxRetryDelay,
	}
}
