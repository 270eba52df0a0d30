package auth

import (
	"strings"
	"testing"
	"time"
)

// Tests set JWT_SECRET via t.Setenv, so none of them run in parallel.

func TestGenerateJWT_ParseJWT_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "op-1" {
		t.Errorf("expected op-1, got %q", claims.UserID)
	}
}

func TestParseJWT_EmptyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := ParseJWT(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateJWT("op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected signature validation to fail with a different secret")
	}
}

func TestParseJWT_Tampered(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = "eyJ0YW1wZXJlZCI6dHJ1ZX0"
	if _, err := ParseJWT(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected error for tampered payload")
	}
}

func TestParseJWTExpiry(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"48", 48 * time.Hour},
		{"not-a-number", 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := parseJWTExpiry(tc.in); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
