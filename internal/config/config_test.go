package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv registers the restore, then the variable is removed so the
	// defaults actually apply
	for _, key := range []string{
		"DATABASE_URL", "PORT", "JWT_SECRET",
		"EXCHANGE_RATE_URL", "EXCHANGE_RATE_BASE", "EXCHANGE_RATE_TTL_MINUTES",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.ExchangeRateBase != "USD" {
		t.Errorf("ExchangeRateBase = %s, want USD", cfg.ExchangeRateBase)
	}
	if cfg.ExchangeRateTTL != 60*time.Minute {
		t.Errorf("ExchangeRateTTL = %s, want 60m", cfg.ExchangeRateTTL)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWTSecret = %s, want empty", cfg.JWTSecret)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/splitpot")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("EXCHANGE_RATE_URL", "https://rates.example.com/latest")
	t.Setenv("EXCHANGE_RATE_BASE", "EUR")
	t.Setenv("EXCHANGE_RATE_TTL_MINUTES", "15")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://app:secret@db:5432/splitpot" {
		t.Errorf("DatabaseURL = %s", cfg.DatabaseURL)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %s", cfg.JWTSecret)
	}
	if cfg.ExchangeRateURL != "https://rates.example.com/latest" {
		t.Errorf("ExchangeRateURL = %s", cfg.ExchangeRateURL)
	}
	if cfg.ExchangeRateBase != "EUR" {
		t.Errorf("ExchangeRateBase = %s", cfg.ExchangeRateBase)
	}
	if cfg.ExchangeRateTTL != 15*time.Minute {
		t.Errorf("ExchangeRateTTL = %s, want 15m", cfg.ExchangeRateTTL)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("EXCHANGE_RATE_TTL_MINUTES", "soon")

	cfg := Load()
	if cfg.ExchangeRateTTL != 60*time.Minute {
		t.Errorf("ExchangeRateTTL = %s, want default 60m", cfg.ExchangeRateTTL)
	}
}
