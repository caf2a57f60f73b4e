package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/interview-engine/internal/application"
)

type contextKey string

const principalContextKey contextKey = "principal"

// AccessTokenHeader carries the candidate access token.
const AccessTokenHeader = "X-Access-Token"

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// accessTokenFromRequest prefers the header so tokens stay out of access logs.
func accessTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := strings.TrimSpace(r.Header.Get(AccessTokenHeader)); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
