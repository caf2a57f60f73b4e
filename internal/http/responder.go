package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/logging"
)

var (
	errBadRequestBody     = errors.New("request body is not valid JSON")
	errMissingAccessToken = errors.New("an access token is required")
)

// Machine readable error codes.
const (
	codeInvalidTransition = "INVALID_TRANSITION"
	codeAlreadyTerminal   = "ALREADY_TERMINAL"
	codeExpired           = "EXPIRED"
	codeInvalidToken      = "INVALID_TOKEN"
	codeAlreadyConsumed   = "ALREADY_CONSUMED"
	codeNotReady          = "NOT_READY"
	codeValidationFailed  = "VALIDATION_FAILED"
	codeNotFound          = "NOT_FOUND"
	codeForbidden         = "FORBIDDEN"
	codeConflict          = "CONFLICT"
	codeBadRequest        = "BAD_REQUEST"
	codeUnauthenticated   = "UNAUTHENTICATED"
	codeInternal          = "INTERNAL"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	code := codeInternal
	class := application.ClassInternal
	if status == http.StatusBadRequest {
		code = codeBadRequest
		class = application.ClassInvalidRequest
	}
	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message, Class: class})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, status, errorResponse{
			ErrorCode: code,
			Message:   "internal server error",
			Class:     application.ClassInternal,
		})
		return
	}

	resp := errorResponse{
		ErrorCode: code,
		Message:   err.Error(),
		Class:     application.Classify(err),
	}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		resp.Message = "request validation failed"
		resp.Errors = vErr.FieldErrors
	}
	r.writeJSON(ctx, w, status, resp)
}

// statusFor checks ErrAlreadyTerminal first: a terminal rejection also
// matches ErrInvalidTransition.
func statusFor(err error) (int, string) {
	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrAlreadyTerminal):
		return http.StatusConflict, codeAlreadyTerminal
	case errors.Is(err, application.ErrInvalidTransition):
		return http.StatusConflict, codeInvalidTransition
	case errors.Is(err, application.ErrExpired):
		return http.StatusGone, codeExpired
	case errors.Is(err, application.ErrInvalidToken):
		return http.StatusForbidden, codeInvalidToken
	case errors.Is(err, application.ErrAlreadyConsumed):
		return http.StatusConflict, codeAlreadyConsumed
	case errors.Is(err, application.ErrNotReady):
		return http.StatusPreconditionRequired, codeNotReady
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, codeValidationFailed
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict, codeConflict
	}
	return http.StatusInternalServerError, codeInternal
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string                     `json:"error_code"`
	Message   string                     `json:"message"`
	Class     application.RejectionClass `json:"class,omitempty"`
	Errors    map[string]string          `json:"errors,omitempty"`
}
