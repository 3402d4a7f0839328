package services

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMain(m *testing.M) {
	InitJWT("test-secret", time.Hour)
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "user@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := ParseToken(tok); err != ErrInvalidToken {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"email":   "user@example.com",
		"iss":     TokenIssuer,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := ParseToken(signed); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for forged token, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"email":   "user@example.com",
		"iss":     TokenIssuer,
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := stale.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := ParseToken(signed); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-1",
		"iss":     "someone-else",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := ParseToken(signed); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	token, err := GenerateToken("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	exp := TokenExpiry(token)
	want := time.Now().Add(time.Hour)
	if exp.Before(want.Add(-time.Minute)) || exp.After(want.Add(time.Minute)) {
		t.Errorf("expiry %v not near configured lifetime %v", exp, want)
	}
}
