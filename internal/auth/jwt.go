// Package auth turns recruiter bearer tokens into application principals.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/interview-engine/internal/application"
)

var (
	ErrMissingAuthHeader = errors.New("auth: missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("auth: invalid token")
	ErrInvalidClaims     = errors.New("auth: invalid token claims")
)

// RoleAdmin grants access to every interview.
const RoleAdmin = "admin"

// Claims is the recruiter token payload.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed recruiter tokens.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier returns a verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// VerifyRequest reads the bearer token from r.
func (v *Verifier) VerifyRequest(r *http.Request) (application.Principal, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return application.Principal{}, ErrMissingAuthHeader
	}
	return v.Verify(strings.TrimPrefix(authz, "Bearer "))
}

// Verify validates tokenStr and maps its claims to a principal.
func (v *Verifier) Verify(tokenStr string) (application.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return application.Principal{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return application.Principal{}, ErrInvalidClaims
	}
	return application.Principal{UserID: claims.Subject, IsAdmin: claims.Role == RoleAdmin}, nil
}

// Issue signs a token for principal valid for ttl.
func (v *Verifier) Issue(principal application.Principal, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if principal.IsAdmin {
		claims.Role = RoleAdmin
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign: %w", err)
	}
	return signed, nil
}
