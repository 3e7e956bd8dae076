package auth

import (
	"errors"
	"testing"
	"time"

	"summers-phone/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:         "secret",
		JWTIssuer:         "issuer",
		JWTAudience:       "aud",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		DashboardPassword: "hunter2",
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestLogin_IssuesVerifiablePair(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()

	pair, err := m.Login(now, "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != DashboardSubject {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	m := testManager(t)
	if _, err := m.Login(time.Now(), "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestVerify_RejectsWrongTokenType(t *testing.T) {
	m := testManager(t)
	p, err := m.IssuePair(time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
}

func TestVerify_UsesInjectedClock(t *testing.T) {
	m := testManager(t)
	// Issue at a fixed past instant; only the injected clock decides expiry.
	issued := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	p, err := m.IssuePair(issued)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, issued.Add(time.Minute)); err != nil {
		t.Fatalf("verify at injected time: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, issued.AddDate(1, 0, 0)); err == nil {
		t.Fatalf("expected expiry a year after issuance")
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.AccessToken, TokenTypeAccess, now.Add(16*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	m := testManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, _ := m.IssuePair(now)

	next, err := m.Refresh(now.Add(time.Hour), p.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := m.Verify(next.AccessToken, TokenTypeAccess, now.Add(time.Hour)); err != nil {
		t.Fatalf("verify refreshed: %v", err)
	}
	if _, err := m.Refresh(now.Add(time.Hour), p.AccessToken); err == nil {
		t.Fatalf("access token must not refresh")
	}
}
