package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRefreshTokenGeneration(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != 64 { // 32 bytes hex = 64 chars
		t.Errorf("expected 64 char raw token, got %d", len(raw))
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}
	if HashRefreshToken(raw) != hash {
		t.Error("hash mismatch")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	tokens := NewTokens("test-secret")

	tok, err := tokens.Issue("test-uid")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "test-uid" {
		t.Errorf("uid mismatch: %s", claims.UserID)
	}

	diff := time.Until(claims.ExpiresAt.Time)
	if diff < 14*time.Minute || diff > 16*time.Minute {
		t.Errorf("expected ~15min expiry, got %v", diff)
	}
}

func TestExpiredToken(t *testing.T) {
	tokens := NewTokens("test-secret")
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := tokens.Issue("uid")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokens("test-secret").Parse(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestAlgorithmConfusion(t *testing.T) {
	tokens := NewTokens("test-secret")

	tok, _ := tokens.Issue("uid")
	if _, err := tokens.Parse(tok); err != nil {
		t.Fatalf("valid token failed: %v", err)
	}

	if _, err := NewTokens("wrong-secret").Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}

	if _, err := tokens.Parse("not.a.token"); err == nil {
		t.Fatal("expected error for garbage token")
	}

	// unsigned tokens must never verify
	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "uid"})
	raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tokens.Parse(raw); err == nil {
		t.Fatal("expected error for alg=none token")
	}
}

func TestPasswordHash(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrShortPassword {
		t.Fatalf("expected ErrShortPassword, got %v", err)
	}

	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "secret124") {
		t.Error("expected wrong password to fail")
	}
}
