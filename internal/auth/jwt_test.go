package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("s3cret")

	token, err := svc.GenerateToken("agent-host", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "agent-host" {
		t.Errorf("Subject = %q, want agent-host", claims.Subject)
	}
	if claims.ExpiresAt == nil {
		t.Error("ExpiresAt = nil, want set")
	}
}

func TestTokenWithoutExpiry(t *testing.T) {
	svc := NewJWTService("s3cret")
	token, err := svc.GenerateToken("cli", 0)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", claims.ExpiresAt)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("s3cret")

	foreign, err := NewJWTService("different").GenerateToken("x", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "someone-else"},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": foreign,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
	}
	for name, tok := range tests {
		if _, err := svc.ValidateToken(tok); err == nil {
			t.Errorf("%s: ValidateToken() error = nil, want rejection", name)
		}
	}
}
