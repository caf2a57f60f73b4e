// Package scheduler validates interview scheduling windows and answers the
// lazy expiry question "has the deadline passed at this instant".
package scheduler

import (
	"strings"
	"time"

	// IANA names must resolve in minimal containers without a zoneinfo tree.
	_ "time/tzdata"
)

// DefaultTimezone is applied when callers leave the timezone blank.
const DefaultTimezone = "UTC"

// Window captures when an interview may be taken.
type Window struct {
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
	Timezone    string
}

// Violation identifies a single field level problem with a window.
type Violation struct {
	Field   string
	Message string
}

const (
	MessageScheduledAtRequired = "scheduled_at is required"
	MessageScheduledAtInPast   = "scheduled_at must be in the future"
	MessageExpiresBeforeStart  = "expires_at must be after scheduled_at"
	MessageExpiresInPast       = "expires_at must be in the future"
	MessageTimezoneInvalid     = "timezone must be a valid IANA name"
)

// Normalize fills defaults: a blank timezone becomes UTC and a missing
// expiry becomes ScheduledAt + defaultExpiry. Times are stored in UTC.
func Normalize(w Window, defaultExpiry time.Duration) Window {
	out := Window{Timezone: strings.TrimSpace(w.Timezone)}
	if out.Timezone == "" {
		out.Timezone = DefaultTimezone
	}
	if w.ScheduledAt != nil {
		at := w.ScheduledAt.UTC()
		out.ScheduledAt = &at
	}
	if w.ExpiresAt != nil {
		at := w.ExpiresAt.UTC()
		out.ExpiresAt = &at
	} else if out.ScheduledAt != nil && defaultExpiry > 0 {
		at := out.ScheduledAt.Add(defaultExpiry)
		out.ExpiresAt = &at
	}
	return out
}

// Validate checks a window that is about to be stored. ScheduledAt must be
// present and strictly in the future; ExpiresAt, when set, must be strictly
// after ScheduledAt.
func Validate(w Window, now time.Time) []Violation {
	var violations []Violation

	if _, err := Location(w.Timezone); err != nil {
		violations = append(violations, Violation{Field: "timezone", Message: MessageTimezoneInvalid})
	}

	if w.ScheduledAt == nil || w.ScheduledAt.IsZero() {
		violations = append(violations, Violation{Field: "scheduled_at", Message: MessageScheduledAtRequired})
		return violations
	}
	if !w.ScheduledAt.After(now) {
		violations = append(violations, Violation{Field: "scheduled_at", Message: MessageScheduledAtInPast})
	}
	if w.ExpiresAt != nil && !w.ExpiresAt.After(*w.ScheduledAt) {
		violations = append(violations, Violation{Field: "expires_at", Message: MessageExpiresBeforeStart})
	}
	return violations
}

// ValidateDeadline checks a standalone link expiry used by self-serve
// interviews that were never scheduled.
func ValidateDeadline(expiresAt time.Time, now time.Time) []Violation {
	if !expiresAt.After(now) {
		return []Violation{{Field: "expires_at", Message: MessageExpiresInPast}}
	}
	return nil
}

// IsExpired reports whether now has reached the deadline. A nil deadline
// never expires; a deadline equal to now counts as expired.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil || expiresAt.IsZero() {
		return false
	}
	return !now.Before(*expiresAt)
}

// Remaining returns the time left before the deadline, or zero once expired.
func Remaining(expiresAt *time.Time, now time.Time) time.Duration {
	if expiresAt == nil || IsExpired(expiresAt, now) {
		return 0
	}
	return expiresAt.Sub(now)
}

// Location resolves an IANA timezone name. A blank name resolves to UTC.
func Location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Local renders the scheduled start in the window's own timezone.
func (w Window) Local() (time.Time, bool) {
	if w.ScheduledAt == nil {
		return time.Time{}, false
	}
	loc, err := Location(w.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return w.ScheduledAt.In(loc), true
}
