package config

import (
	"strings"
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "voicecampaign")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret")
	t.Setenv("CLIENT_JWT_SECRET", "client-secret")
	t.Setenv("PROVIDER_BASE_URL", "https://provider.example.com")
	t.Setenv("PROVIDER_API_KEY", "key")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setValidEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Auth.Admin.TTL != 24*time.Hour {
		t.Fatalf("expected default admin ttl, got %v", c.Auth.Admin.TTL)
	}
	if c.Auth.Client.TTL != 72*time.Hour {
		t.Fatalf("expected default client ttl, got %v", c.Auth.Client.TTL)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected local sslmode default, got %q", c.DB.SSLMode)
	}
	if c.Provider.MaxConcurrentCalls != 10 {
		t.Fatalf("expected default concurrency cap, got %d", c.Provider.MaxConcurrentCalls)
	}
}

func TestLoad_RejectsSharedJWTSecret(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CLIENT_JWT_SECRET", "admin-secret")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for shared secret")
	}
	if !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_RequiresProviderConfig(t *testing.T) {
	setValidEnv(t)
	t.Setenv("PROVIDER_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing provider base url")
	}
}

func TestLoad_ProductionRequiresExplicitSSL(t *testing.T) {
	setValidEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ISSUER", "voicecampaign")
	t.Setenv("PROVIDER_WEBHOOK_SECRET", "whsec")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error: production without DB_SSLMODE")
	}

	t.Setenv("DB_SSLMODE", "require")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}
