package config

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadStringYAML(t *testing.T) {
	content := `
portal: acme
bearer_token: secret
read_only: true
log:
  level: debug
  format: console
http:
  timeout_seconds: 10
  max_retries: 5
`
	cfg, err := NewLoader().LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Portal != "acme" || cfg.BearerToken != "secret" {
		t.Errorf("Portal/BearerToken = %q/%q, want acme/secret", cfg.Portal, cfg.BearerToken)
	}
	if !cfg.ReadOnly {
		t.Error("ReadOnly = false, want true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want debug/console", cfg.Log)
	}
	if cfg.HTTP.TimeoutSeconds != 10 || cfg.HTTP.MaxRetries != 5 {
		t.Errorf("HTTP = %+v, want 10/5", cfg.HTTP)
	}
}

func TestLoadStringJSON(t *testing.T) {
	content := `{"portal": "acme", "bearer_token": "secret"}`
	cfg, err := NewLoader().LoadString(content, FormatJSON)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Portal != "acme" {
		t.Errorf("Portal = %q, want acme", cfg.Portal)
	}
	// Defaults survive a partial document.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadStringEnvExpansion(t *testing.T) {
	t.Setenv("TEST_PULSEMON_TOKEN", "from-env")
	content := `
portal: acme
bearer_token: ${TEST_PULSEMON_TOKEN}
log:
  level: ${TEST_PULSEMON_MISSING:-warn}
`
	cfg, err := NewLoader().LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.BearerToken != "from-env" {
		t.Errorf("BearerToken = %q, want from-env", cfg.BearerToken)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want default-expanded warn", cfg.Log.Level)
	}
}

func TestLoadStringInvalidYAML(t *testing.T) {
	_, err := NewLoader().LoadString("portal: [unclosed", FormatYAML)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("error = %v, want ErrValidationFailed", err)
	}
	if !strings.Contains(err.Error(), "portal") || !strings.Contains(err.Error(), "bearer_token") {
		t.Errorf("error %q should name both missing fields", err)
	}
}

func TestValidateBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Portal = "acme"
	cfg.BearerToken = "tok"
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error = %v, want ErrValidationFailed", err)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv("PULSEMON_PORTAL", "env-portal")
	t.Setenv("PULSEMON_BEARER_TOKEN", "env-token")
	t.Setenv("PULSEMON_READ_ONLY", "true")
	t.Setenv("PULSEMON_LOG_LEVEL", "error")

	cfg, err := NewLoader().LoadString("portal: file-portal\nbearer_token: file-token\n", FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.Portal != "env-portal" || cfg.BearerToken != "env-token" {
		t.Errorf("Portal/BearerToken = %q/%q, want env values", cfg.Portal, cfg.BearerToken)
	}
	if !cfg.ReadOnly || cfg.Log.Level != "error" {
		t.Errorf("ReadOnly/Log.Level = %v/%q, want true/error", cfg.ReadOnly, cfg.Log.Level)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PULSEMON_PORTAL", "acme")
	t.Setenv("PULSEMON_BEARER_TOKEN", "tok")

	cfg, err := NewLoader().FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Portal != "acme" || cfg.BearerToken != "tok" {
		t.Errorf("cfg = %+v, want env-derived portal/token", cfg)
	}
}

func TestPortalURL(t *testing.T) {
	t.Parallel()

	cfg := &Config{Portal: "acme"}
	if got := cfg.PortalURL(); got != "https://acme.logicmonitor.com/santaba/rest" {
		t.Errorf("PortalURL() = %q", got)
	}
	cfg.BaseURL = "http://127.0.0.1:8080/rest/"
	if got := cfg.PortalURL(); got != "http://127.0.0.1:8080/rest" {
		t.Errorf("PortalURL() with override = %q", got)
	}
}

func TestExpandEnvStrictMissing(t *testing.T) {
	_, err := ExpandEnvStrict("value: ${TEST_PULSEMON_DEFINITELY_MISSING}")
	if !errors.Is(err, ErrMissingEnvVar) {
		t.Errorf("error = %v, want ErrMissingEnvVar", err)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().LoadFile("/nonexistent/pulsemon.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}
