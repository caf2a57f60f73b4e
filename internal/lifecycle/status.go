// Package lifecycle owns the interview status enum and the single transition
// function every caller dispatches through.
package lifecycle

import (
	"fmt"
	"strings"
)

// Status is the authoritative lifecycle state of an interview record. Values
// are exchanged as the literal lowercase strings below.
type Status string

const (
	StatusSetup              Status = "setup"
	StatusQuestionsGenerated Status = "questions_generated"
	StatusReady              Status = "ready"
	StatusScheduled          Status = "scheduled"
	StatusInProgress         Status = "in_progress"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
	StatusExpired            Status = "expired"
)

// Initial is the status every new record starts in.
const Initial = StatusSetup

var allStatuses = []Status{
	StatusSetup,
	StatusQuestionsGenerated,
	StatusReady,
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusExpired,
}

// Statuses returns every canonical status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a wire value into a Status. Matching is exact: the
// uppercase job/candidate vocabulary and informal values such as "started"
// or "pending" are rejected.
func ParseStatus(value string) (Status, error) {
	for _, status := range allStatuses {
		if string(status) == value {
			return status, nil
		}
	}
	return "", fmt.Errorf("lifecycle: unknown status %q", strings.TrimSpace(value))
}

// Valid reports whether s is one of the canonical values.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Admissible reports whether a candidate may be admitted from s.
func (s Status) Admissible() bool {
	return s == StatusReady || s == StatusScheduled
}

// Editable reports whether configuration and scheduling may still change.
func (s Status) Editable() bool {
	return !s.Terminal() && s != StatusInProgress
}

func (s Status) String() string {
	return string(s)
}
