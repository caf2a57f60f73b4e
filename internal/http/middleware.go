package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/logging"
)

// TokenVerifier authenticates recruiter and service callers.
type TokenVerifier interface {
	VerifyRequest(r *http.Request) (application.Principal, error)
}

// RequireSession rejects requests without a valid bearer token and attaches
// the principal to the request context.
func RequireSession(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				responder.writeError(r.Context(), w, http.StatusInternalServerError, errors.New("token verifier not configured"))
				return
			}
			principal, err := verifier.VerifyRequest(r)
			if err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "authentication failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: codeUnauthenticated,
					Message:   "a valid bearer token is required",
					Class:     application.ClassInvalidRequest,
				})
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a per-request logger carrying the chi request id.
// It must run after middleware.RequestID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
