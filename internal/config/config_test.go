package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/clinilab_test")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.LookupTimeout != 10 {
		t.Errorf("expected default lookup timeout 10, got %d", cfg.LookupTimeout)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestValidateProductionRequiresIssuer(t *testing.T) {
	cfg := &Config{Env: "production", LookupTimeout: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when AUTH_ISSUER is unset in production")
	}
	cfg.AuthIssuer = "https://auth.example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when AUTH_SIGNING_KEY is unset in production")
	}
	cfg.AuthSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateLookupTimeout(t *testing.T) {
	cfg := &Config{Env: "development", LookupTimeout: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero lookup timeout")
	}
}
