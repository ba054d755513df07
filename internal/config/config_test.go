package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		Env:                 "test",
		HTTPPort:            "8080",
		DatabaseURL:         "postgres://localhost/coaching_test",
		AuthTokenSecret:     strings.Repeat("s", 32),
		AuthTokenTTL:        72 * time.Hour,
		ResetTokenPepper:    strings.Repeat("p", 16),
		ResetTokenTTL:       30 * time.Minute,
		SessionCacheTTL:     5 * time.Minute,
		AuthRateLimitPerMin: 30,
		APIRateLimitPerMin:  120,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coaching_test")
	t.Setenv("AUTH_TOKEN_SECRET", strings.Repeat("s", 32))
	t.Setenv("RESET_TOKEN_PEPPER", strings.Repeat("p", 16))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthTokenTTL != 72*time.Hour {
		t.Fatalf("expected default token TTL of 72h, got %v", cfg.AuthTokenTTL)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.NotificationQueueKey != "jobs:session_notifications" {
		t.Fatalf("unexpected notification queue key: %q", cfg.NotificationQueueKey)
	}
	if cfg.RedisEnabled {
		t.Fatal("redis should default to disabled")
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coaching_test")
	t.Setenv("AUTH_TOKEN_SECRET", strings.Repeat("s", 32))
	t.Setenv("RESET_TOKEN_PEPPER", strings.Repeat("p", 16))
	t.Setenv("AUTH_TOKEN_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed AUTH_TOKEN_TTL")
	}
}

func TestValidate(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"missing database url":  func(c *Config) { c.DatabaseURL = "" },
		"short token secret":    func(c *Config) { c.AuthTokenSecret = "short" },
		"short reset pepper":    func(c *Config) { c.ResetTokenPepper = "短" },
		"zero token ttl":        func(c *Config) { c.AuthTokenTTL = 0 },
		"oversized token ttl":   func(c *Config) { c.AuthTokenTTL = 31 * 24 * time.Hour },
		"negative cache ttl":    func(c *Config) { c.SessionCacheTTL = -time.Second },
		"zero auth rate limit":  func(c *Config) { c.AuthRateLimitPerMin = 0 },
		"storage without creds": func(c *Config) { c.StorageEnabled = true },
		"sampling out of range": func(c *Config) { c.OTELTraceSamplingRatio = 1.5 },
	}
	for name, mutate := range cases {
		cfg := validTestConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
