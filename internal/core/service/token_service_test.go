package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

const testSecret = "test-secret-key"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTokenService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc.WithClock(fixedClock(now))
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)

	token, err := svc.IssueAccessToken(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want 42", claims.Subject)
	}
	if claims.Type != domain.TokenTypeAccess {
		t.Errorf("type = %q, want access", claims.Type)
	}
	if !claims.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("exp = %v, want now+30m", claims.ExpiresAt)
	}
	if claims.ID == "" {
		t.Error("expected a jti")
	}
}

func TestTokenService_RefreshUsesRefreshTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)

	token, err := svc.IssueRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Type != domain.TokenTypeRefresh {
		t.Errorf("type = %q, want refresh", claims.Type)
	}
	if !claims.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("exp = %v, want now+7d", claims.ExpiresAt)
	}
}

func TestTokenService_TokensAreDistinct(t *testing.T) {
	svc := newTestTokenService(t, time.Now())

	a, _ := svc.IssueAccessToken(1)
	b, _ := svc.IssueAccessToken(1)
	if a == b {
		t.Fatal("two tokens issued in the same second must differ")
	}
}

func TestTokenService_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, issuedAt)
	token, _ := svc.IssueAccessToken(1)

	svc.WithClock(fixedClock(issuedAt.Add(31 * time.Minute)))
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	now := time.Now()
	issuer := newTestTokenService(t, now)
	token, _ := issuer.IssueAccessToken(1)

	other, err := NewTokenService(TokenConfig{Secret: "another-secret"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, err := other.WithClock(fixedClock(now)).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_WrongAlgorithm(t *testing.T) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "1",
		"type": "access",
		"exp":  now.Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	svc := newTestTokenService(t, now)
	if _, err := svc.Verify(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestTokenService(t, time.Now())
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenService_ConfigurableAlgorithm(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "HS384"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	token, _ := svc.IssueAccessToken(3)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Method.Alg() != "HS384" {
		t.Fatalf("alg = %s, want HS384", parsed.Method.Alg())
	}
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	if _, err := NewTokenService(TokenConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
	_, err := NewTokenService(TokenConfig{Secret: "x", Algorithm: "RS256"})
	if err == nil || !strings.Contains(err.Error(), "unsupported algorithm") {
		t.Errorf("expected unsupported algorithm error, got %v", err)
	}
}
