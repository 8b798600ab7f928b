package auth

import (
	"testing"
	"time"

	"voicecampaign-platform/internal/config"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager(DomainClient, "issuer", config.TokenConfig{Secret: "secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "user-1", "client")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "client" || claims.Domain != DomainClient {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, _ := NewManager(DomainClient, "", config.TokenConfig{Secret: "secret", TTL: time.Minute})

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "u", "client")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifyRejectsCrossDomainToken(t *testing.T) {
	admin, _ := NewManager(DomainAdmin, "", config.TokenConfig{Secret: "admin-secret", TTL: time.Hour})
	client, _ := NewManager(DomainClient, "", config.TokenConfig{Secret: "client-secret", TTL: time.Hour})

	now := time.Now()
	tok, err := admin.Issue(now, "u", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Different secret: signature fails outright.
	if _, err := client.Verify(tok, now); err == nil {
		t.Fatalf("expected cross-domain rejection")
	}

	// Same secret but mismatched domain claim must still fail.
	clientSameSecret, _ := NewManager(DomainClient, "", config.TokenConfig{Secret: "admin-secret", TTL: time.Hour})
	if _, err := clientSameSecret.Verify(tok, now); err == nil {
		t.Fatalf("expected domain claim rejection")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	h, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "password123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := CheckPassword(h, "password123"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := CheckPassword(h, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
