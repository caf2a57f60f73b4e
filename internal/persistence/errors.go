package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrVersionConflict is returned when a conditional write lost the race
	// against another writer of the same record.
	ErrVersionConflict = errors.New("persistence: version conflict")
	// ErrConstraintViolation is returned when a write breaks a schema constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
