package persistence

import "context"

// InterviewFilter narrows interview listings. Empty fields match everything.
type InterviewFilter struct {
	CreatedBy   string
	CandidateID string
	Statuses    []string
}

// InterviewRepository stores interview records and their transition history.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview Interview) error
	GetInterview(ctx context.Context, id string) (Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]Interview, error)
	// UpdateInterview writes interview only if the stored version still equals
	// interview.Version, storing interview.Version+1, and appends history in
	// the same transaction. A lost race yields ErrVersionConflict.
	UpdateInterview(ctx context.Context, interview Interview, history ...Transition) error
	ListTransitions(ctx context.Context, interviewID string) ([]Transition, error)
}
