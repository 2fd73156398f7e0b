package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"PUBLIC_KEY": "abcd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.RateLimit.Prefix != "rate_limit" {
		t.Fatalf("expected rate_limit prefix, got %q", cfg.RateLimit.Prefix)
	}
	if cfg.RateLimit.Max != 5 || cfg.RateLimit.Window != 60*time.Second {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	if cfg.Discord.AttemptTimeout != 5*time.Second || cfg.Discord.MaxRetries != 2 || cfg.Discord.RetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("unexpected discord defaults %+v", cfg.Discord)
	}
	if cfg.Production() {
		t.Fatalf("expected development by default")
	}
}

func TestLoadFrom_RequiresPublicKey(t *testing.T) {
	if _, err := LoadFrom(map[string]string{}); err == nil {
		t.Fatalf("expected error without PUBLIC_KEY")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PUBLIC_KEY":           "abcd",
		"APP_ENV":              "Production",
		"RATE_LIMIT_WINDOW":    "30s",
		"RATE_LIMIT_REDIS_URL": "redis://localhost:6379/0",
		"OUTBOUND_RPS":         "10.5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Production() {
		t.Fatalf("expected production")
	}
	if cfg.RateLimit.Window != 30*time.Second || cfg.RateLimit.RedisURL == "" {
		t.Fatalf("unexpected rate limit config %+v", cfg.RateLimit)
	}
	if cfg.Discord.RequestsPerSec != 10.5 {
		t.Fatalf("expected 10.5 rps, got %v", cfg.Discord.RequestsPerSec)
	}
}

func TestValidate(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"PUBLIC_KEY":          "abcd",
		"RATE_LIMIT_MAX":      "0",
		"RATE_STATS_ENABLED":  "true",
		"DISCORD_MAX_RETRIES": "-1",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"RATE_LIMIT_MAX", "RATE_LIMIT_REDIS_URL", "DISCORD_MAX_RETRIES"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %v", want, err)
		}
	}
}
