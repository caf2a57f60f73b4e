package testfixtures

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/readiness"
)

// MemoryInterviewRepository is an application.InterviewRepository with the
// same optimistic version semantics as the SQLite store.
type MemoryInterviewRepository struct {
	mu          sync.Mutex
	interviews  map[string]application.Interview
	transitions map[string][]application.TransitionRecord
	saves       int

	// BeforeSave, when set, runs before every version check with the lock
	// released. Tests use it to inject a concurrent writer.
	BeforeSave func(rec application.Interview)
}

// NewMemoryInterviewRepository returns an empty repository seeded with records.
func NewMemoryInterviewRepository(seed ...application.Interview) *MemoryInterviewRepository {
	repo := &MemoryInterviewRepository{
		interviews:  make(map[string]application.Interview),
		transitions: make(map[string][]application.TransitionRecord),
	}
	for _, rec := range seed {
		repo.interviews[rec.ID] = cloneInterview(rec)
	}
	return repo
}

// CreateInterview implements application.InterviewRepository.
func (r *MemoryInterviewRepository) CreateInterview(_ context.Context, rec application.Interview) (application.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.interviews[rec.ID]; exists {
		return application.Interview{}, fmt.Errorf("interview %s exists: %w", rec.ID, application.ErrConflict)
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	r.interviews[rec.ID] = cloneInterview(rec)
	return cloneInterview(rec), nil
}

// GetInterview implements application.InterviewRepository.
func (r *MemoryInterviewRepository) GetInterview(_ context.Context, id string) (application.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.interviews[id]
	if !ok {
		return application.Interview{}, application.ErrNotFound
	}
	return cloneInterview(rec), nil
}

// ListInterviews implements application.InterviewRepository.
func (r *MemoryInterviewRepository) ListInterviews(_ context.Context, filter application.InterviewFilter) ([]application.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]application.Interview, 0, len(r.interviews))
	for _, rec := range r.interviews {
		if filter.CreatedBy != "" && rec.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.CandidateID != "" && rec.CandidateID != filter.CandidateID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if status == rec.Status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, cloneInterview(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SaveInterview implements application.InterviewRepository.
func (r *MemoryInterviewRepository) SaveInterview(_ context.Context, rec application.Interview, history []application.TransitionRecord) (application.Interview, error) {
	if r.BeforeSave != nil {
		r.BeforeSave(cloneInterview(rec))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.interviews[rec.ID]
	if !ok {
		return application.Interview{}, application.ErrNotFound
	}
	if stored.Version != rec.Version {
		return application.Interview{}, application.ErrConflict
	}
	rec.Version++
	r.interviews[rec.ID] = cloneInterview(rec)
	r.transitions[rec.ID] = append(r.transitions[rec.ID], history...)
	r.saves++
	return cloneInterview(rec), nil
}

// ListTransitions implements application.InterviewRepository.
func (r *MemoryInterviewRepository) ListTransitions(_ context.Context, interviewID string) ([]application.TransitionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]application.TransitionRecord(nil), r.transitions[interviewID]...), nil
}

// Put overwrites a record without a version check, as a concurrent writer would.
func (r *MemoryInterviewRepository) Put(rec application.Interview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interviews[rec.ID] = cloneInterview(rec)
}

// Saves counts successful versioned writes.
func (r *MemoryInterviewRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func cloneInterview(rec application.Interview) application.Interview {
	out := rec
	out.Questions = append([]string(nil), rec.Questions...)
	out.ApprovedAt = cloneTime(rec.ApprovedAt)
	out.Window.ScheduledAt = cloneTime(rec.Window.ScheduledAt)
	out.Window.ExpiresAt = cloneTime(rec.Window.ExpiresAt)
	out.Access.ConsumedAt = cloneTime(rec.Access.ConsumedAt)
	out.Access.IssuedAt = cloneTime(rec.Access.IssuedAt)
	if rec.Precheck != nil {
		precheck := *rec.Precheck
		precheck.Checks = append([]readiness.Check(nil), rec.Precheck.Checks...)
		out.Precheck = &precheck
	}
	if rec.Monitoring != nil {
		out.Monitoring = make(map[string]int, len(rec.Monitoring))
		for k, v := range rec.Monitoring {
			out.Monitoring[k] = v
		}
	}
	if rec.Decision != nil {
		decision := *rec.Decision
		out.Decision = &decision
	}
	out.StartedAt = cloneTime(rec.StartedAt)
	out.CompletedAt = cloneTime(rec.CompletedAt)
	out.EndedAt = cloneTime(rec.EndedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
