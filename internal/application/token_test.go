package application

import (
	"errors"
	"strings"
	"testing"
)

var testTokenParams = Argon2idParams{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken()
	if err != nil {
		t.Fatalf("NewAccessToken returned error: %v", err)
	}
	if len(token) != 43 || strings.ContainsAny(token, "+/=") {
		t.Fatalf("expected 43 url-safe characters, got %q", token)
	}

	hash, err := HashAccessToken(token, testTokenParams)
	if err != nil {
		t.Fatalf("HashAccessToken returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}
	if err := VerifyAccessToken(hash, token); err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if err := VerifyAccessToken(hash, token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyAccessTokenRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	if err := VerifyAccessToken("", "token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty hash, got %v", err)
	}
	if err := VerifyAccessToken("$bcrypt$x$y$z$w", "token"); !errors.Is(err, ErrInvalidTokenHash) {
		t.Fatalf("expected ErrInvalidTokenHash, got %v", err)
	}
	if err := VerifyAccessToken("$argon2id$v=18$m=64,t=1,p=1$c2FsdA$aGFzaA", "token"); !errors.Is(err, ErrIncompatibleTokenVersion) {
		t.Fatalf("expected ErrIncompatibleTokenVersion, got %v", err)
	}
}
