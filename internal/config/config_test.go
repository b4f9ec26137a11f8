package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("RateLimit.Window = %v", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Max != 100 {
		t.Errorf("RateLimit.Max = %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.AuthRPS != 0 {
		t.Errorf("RateLimit.AuthRPS = %v, want disabled by default", cfg.RateLimit.AuthRPS)
	}
	if cfg.Session.MaxAge != 24*time.Hour {
		t.Errorf("Session.MaxAge = %v", cfg.Session.MaxAge)
	}
	if cfg.Session.SweepInterval != time.Hour {
		t.Errorf("Session.SweepInterval = %v", cfg.Session.SweepInterval)
	}
	if cfg.Session.Secure {
		t.Error("Session.Secure should default to false")
	}
	if cfg.Session.CookieName != "trip_session" {
		t.Errorf("Session.CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Session.Store != "sqlite" {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.BodyLimit != 10<<20 {
		t.Errorf("BodyLimit = %d", cfg.BodyLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.CORS.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("first origin = %q", cfg.CORS.AllowedOrigins[0])
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_MAX", "2")
	t.Setenv("SESSION_SECRET", "super-secret")
	t.Setenv("SESSION_MAX_AGE", "1h")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com , https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want lowercased", cfg.Environment)
	}
	if cfg.RateLimit.Window != time.Minute || cfg.RateLimit.Max != 2 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimit.Window, cfg.RateLimit.Max)
	}
	if cfg.Session.Secret != "super-secret" || cfg.Session.MaxAge != time.Hour || !cfg.Session.Secure {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[0] != want[0] || cfg.CORS.AllowedOrigins[1] != want[1] {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_NormalizesWarnAndGinMode(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		frag string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero window", "RATE_LIMIT_WINDOW", "0s", "RATE_LIMIT_WINDOW"},
		{"zero max", "RATE_LIMIT_MAX", "0", "RATE_LIMIT_MAX"},
		{"negative auth rps", "AUTH_RPS", "-1", "AUTH_RPS"},
		{"zero session age", "SESSION_MAX_AGE", "0s", "SESSION_MAX_AGE"},
		{"zero sweep interval", "SESSION_SWEEP_INTERVAL", "0s", "SESSION_SWEEP_INTERVAL"},
		{"bad store", "SESSION_STORE", "redis", "SESSION_STORE"},
		{"bad sampler", "OTEL_TRACES_SAMPLER_ARG", "2", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.frag) {
				t.Errorf("error %q does not mention %s", err, tc.frag)
			}
		})
	}
}

func TestGetBool_Values(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "on", " y "} {
		t.Setenv("SOME_FLAG", v)
		if !getbool("SOME_FLAG", false) {
			t.Errorf("getbool(%q) = false", v)
		}
	}
	for _, v := range []string{"0", "false", "off", "no"} {
		t.Setenv("SOME_FLAG", v)
		if getbool("SOME_FLAG", true) {
			t.Errorf("getbool(%q) = true", v)
		}
	}
	t.Setenv("SOME_FLAG", "maybe")
	if !getbool("SOME_FLAG", true) {
		t.Error("unparseable value should fall back to default")
	}
}
