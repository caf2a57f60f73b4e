package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/interview-engine/internal/application"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier("test-secret", "interviewd")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestVerifyRequest(t *testing.T) {
	v := newTestVerifier(t)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		if _, err := v.VerifyRequest(req); err != ErrMissingAuthHeader {
			t.Fatalf("expected ErrMissingAuthHeader, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		if _, err := v.VerifyRequest(req); err != ErrMissingAuthHeader {
			t.Fatalf("expected ErrMissingAuthHeader, got %v", err)
		}
	})

	t.Run("issued token round trips", func(t *testing.T) {
		signed, err := v.Issue(application.Principal{UserID: "rec-1", IsAdmin: true}, time.Hour)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		principal, err := v.VerifyRequest(req)
		if err != nil {
			t.Fatalf("VerifyRequest: %v", err)
		}
		if principal.UserID != "rec-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})
}

func TestVerifyRejects(t *testing.T) {
	v := newTestVerifier(t)

	t.Run("invalid signing method", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "user",
			"iss": "interviewd",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString(key)
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		if _, err := v.Verify(signed); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user",
			"iss": "interviewd",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("other-secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		if _, err := v.Verify(signed); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		signed, err := v.Issue(application.Principal{UserID: "rec-1"}, -time.Minute)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := v.Verify(signed); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewVerifier("test-secret", "someone-else")
		if err != nil {
			t.Fatalf("NewVerifier: %v", err)
		}
		signed, err := other.Issue(application.Principal{UserID: "rec-1"}, time.Hour)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := v.Verify(signed); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		signed, err := v.Issue(application.Principal{}, time.Hour)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := v.Verify(signed); err != ErrInvalidClaims {
			t.Fatalf("expected ErrInvalidClaims, got %v", err)
		}
	})
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("  ", ""); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
