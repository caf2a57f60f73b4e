package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/readiness"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a write lost a version race and retries ran out.
	ErrConflict = errors.New("application: concurrent modification")
	// ErrExpired is returned when the lazy deadline check fired for the record.
	ErrExpired = errors.New("application: interview expired")
	// ErrInvalidToken is returned when the access token does not match the record.
	ErrInvalidToken = errors.New("application: invalid access token")
	// ErrAlreadyConsumed is returned when the access token was already used for admission.
	ErrAlreadyConsumed = errors.New("application: access token already consumed")
	// ErrNotReady is returned when the readiness gate has not passed.
	ErrNotReady = errors.New("application: readiness gate not passed")

	// ErrInvalidTransition and ErrAlreadyTerminal alias the lifecycle sentinels
	// so callers only import this package.
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrAlreadyTerminal   = lifecycle.ErrAlreadyTerminal
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// RejectionClass tells a caller whether retrying can help.
type RejectionClass string

const (
	// ClassRetryable means the caller can fix the situation locally, for
	// example by re-running the readiness probe.
	ClassRetryable RejectionClass = "retryable"
	// ClassUnusable means the link or record can no longer be used.
	ClassUnusable RejectionClass = "unusable"
	// ClassInvalidRequest covers malformed input and permission failures.
	ClassInvalidRequest RejectionClass = "invalid_request"
	// ClassInternal covers unexpected failures.
	ClassInternal RejectionClass = "internal"
)

// Classify maps an error onto the rejection class surfaced to users.
func Classify(err error) RejectionClass {
	var vErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotReady),
		errors.Is(err, readiness.ErrPermissionDenied),
		errors.Is(err, readiness.ErrDeviceUnavailable),
		errors.Is(err, readiness.ErrNetworkCheckFailed),
		errors.Is(err, ErrConflict):
		return ClassRetryable
	case errors.Is(err, ErrExpired),
		errors.Is(err, ErrAlreadyTerminal),
		errors.Is(err, ErrAlreadyConsumed),
		errors.Is(err, ErrInvalidToken):
		return ClassUnusable
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrNotFound),
		errors.As(err, &vErr):
		return ClassInvalidRequest
	}
	return ClassInternal
}
