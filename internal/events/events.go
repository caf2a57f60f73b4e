// Package events publishes interview lifecycle notifications after commit.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names an event.
type Type string

const (
	// TypeStatusChanged is published once per committed status transition.
	TypeStatusChanged Type = "interview.status_changed"
	// TypeInviteRequested asks the mailer to send the candidate link.
	TypeInviteRequested Type = "interview.invite_requested"
)

// Event is the wire form of a notification. Link carries the candidate's
// secret token and must only be delivered to the mailer.
type Event struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	InterviewID string     `json:"interview_id"`
	CandidateID string     `json:"candidate_id,omitempty"`
	Transition  string     `json:"transition,omitempty"`
	From        string     `json:"from,omitempty"`
	To          string     `json:"to,omitempty"`
	Actor       string     `json:"actor,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Link        string     `json:"link,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// Publisher delivers events. Delivery is best effort: callers log failures
// and never roll back a committed write because of them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop drops every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything recorded, optionally limited to types.
func (r *Recorder) Events(types ...Type) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if len(types) == 0 || contains(types, event.Type) {
			out = append(out, event)
		}
	}
	return out
}

func contains(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
