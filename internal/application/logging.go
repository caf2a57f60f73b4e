package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/interview-engine/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logOutcome logs a finished operation. Expected rejections are logged at
// warn level, anything unclassified at error level.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, failure, success string) {
	if err == nil {
		logger.InfoContext(ctx, success)
		return
	}
	if Classify(err) == ClassInternal {
		logger.ErrorContext(ctx, failure, "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.WarnContext(ctx, failure, "error", err, "error_kind", ErrorKind(err))
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrAlreadyConsumed):
		return "already_consumed"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	case errors.Is(err, ErrAlreadyTerminal):
		return "already_terminal"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
