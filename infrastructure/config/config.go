// Package config provides configuration loading and parsing for the
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration errors.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidFormat     = errors.New("invalid config format")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrMissingEnvVar     = errors.New("missing environment variable")
	ErrValidationFailed  = errors.New("config validation failed")
)

// Config is the full server configuration.
type Config struct {
	// Portal is the monitoring portal name, e.g. "acme" for
	// acme.logicmonitor.com.
	Portal string `yaml:"portal" json:"portal"`

	// BearerToken authenticates against the portal REST API.
	BearerToken string `yaml:"bearer_token" json:"bearer_token"`

	// BaseURL overrides the derived portal URL, mainly for tests.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// ReadOnly restricts the tool surface to read-only tools.
	ReadOnly bool `yaml:"read_only" json:"read_only"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" json:"log"`

	// HTTP configures the portal client.
	HTTP HTTPConfig `yaml:"http" json:"http"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// HTTPConfig configures the portal HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries" json:"max_retries"`
}

// Default returns a configuration with sensible defaults. Portal and
// BearerToken must still be supplied by file or environment.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{TimeoutSeconds: 30, MaxRetries: 3},
	}
}

// Timeout returns the HTTP timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// PortalURL derives the REST base URL from the portal name, unless
// BaseURL overrides it.
func (c *Config) PortalURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.logicmonitor.com/santaba/rest", c.Portal)
}

// ApplyEnv overlays PULSEMON_* environment variables onto the config.
// Environment always wins over file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PULSEMON_PORTAL"); v != "" {
		c.Portal = v
	}
	if v := os.Getenv("PULSEMON_BEARER_TOKEN"); v != "" {
		c.BearerToken = v
	}
	if v := os.Getenv("PULSEMON_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PULSEMON_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PULSEMON_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ReadOnly = b
		}
	}
}

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	var problems []string
	if c.Portal == "" && c.BaseURL == "" {
		problems = append(problems, "portal is required")
	}
	if c.BearerToken == "" {
		problems = append(problems, "bearer_token is required")
	}
	switch c.Log.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	if c.HTTP.TimeoutSeconds < 0 {
		problems = append(problems, "http.timeout_seconds must not be negative")
	}
	if c.HTTP.MaxRetries < 0 {
		problems = append(problems, "http.max_retries must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}
