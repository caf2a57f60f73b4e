package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/persistence"
	"github.com/example/interview-engine/internal/readiness"
	"github.com/example/interview-engine/internal/scheduler"
)

type interviewRepositoryAdapter struct {
	repo persistence.InterviewRepository
}

func newInterviewRepositoryAdapter(repo persistence.InterviewRepository) *interviewRepositoryAdapter {
	return &interviewRepositoryAdapter{repo: repo}
}

var _ application.InterviewRepository = (*interviewRepositoryAdapter)(nil)

func (a *interviewRepositoryAdapter) CreateInterview(ctx context.Context, interview application.Interview) (application.Interview, error) {
	if err := a.repo.CreateInterview(ctx, toPersistenceInterview(interview)); err != nil {
		return application.Interview{}, mapPersistenceError(err)
	}
	return a.GetInterview(ctx, interview.ID)
}

func (a *interviewRepositoryAdapter) GetInterview(ctx context.Context, id string) (application.Interview, error) {
	stored, err := a.repo.GetInterview(ctx, id)
	if err != nil {
		return application.Interview{}, mapPersistenceError(err)
	}
	return toApplicationInterview(stored)
}

func (a *interviewRepositoryAdapter) ListInterviews(ctx context.Context, filter application.InterviewFilter) ([]application.Interview, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	models, err := a.repo.ListInterviews(ctx, persistence.InterviewFilter{
		CreatedBy:   filter.CreatedBy,
		CandidateID: filter.CandidateID,
		Statuses:    statuses,
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	interviews := make([]application.Interview, 0, len(models))
	for _, model := range models {
		interview, err := toApplicationInterview(model)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, interview)
	}
	return interviews, nil
}

// SaveInterview expects interview.Version to be the version that was read.
func (a *interviewRepositoryAdapter) SaveInterview(ctx context.Context, interview application.Interview, history []application.TransitionRecord) (application.Interview, error) {
	rows := make([]persistence.Transition, 0, len(history))
	for _, entry := range history {
		rows = append(rows, persistence.Transition{
			ID:          entry.ID,
			InterviewID: entry.InterviewID,
			Transition:  string(entry.Transition),
			FromStatus:  string(entry.From),
			ToStatus:    string(entry.To),
			Actor:       entry.Actor,
			Reason:      entry.Reason,
			OccurredAt:  entry.OccurredAt,
		})
	}
	if err := a.repo.UpdateInterview(ctx, toPersistenceInterview(interview), rows...); err != nil {
		return application.Interview{}, mapPersistenceError(err)
	}
	interview.Version++
	return interview, nil
}

func (a *interviewRepositoryAdapter) ListTransitions(ctx context.Context, interviewID string) ([]application.TransitionRecord, error) {
	rows, err := a.repo.ListTransitions(ctx, interviewID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	records := make([]application.TransitionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, application.TransitionRecord{
			ID:          row.ID,
			InterviewID: row.InterviewID,
			Transition:  lifecycle.Transition(row.Transition),
			From:        lifecycle.Status(row.FromStatus),
			To:          lifecycle.Status(row.ToStatus),
			Actor:       row.Actor,
			Reason:      row.Reason,
			OccurredAt:  row.OccurredAt,
		})
	}
	return records, nil
}

func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrVersionConflict), errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %v", application.ErrConflict, err)
	}
	return err
}

func toPersistenceInterview(i application.Interview) persistence.Interview {
	out := persistence.Interview{
		ID:              i.ID,
		JobID:           i.JobID,
		CandidateID:     i.CandidateID,
		CreatedBy:       i.CreatedBy,
		Status:          string(i.Status),
		Version:         i.Version,
		QuestionCount:   i.Config.QuestionCount,
		DurationMinutes: i.Config.DurationMinutes,
		InterviewMode:   string(i.Config.Mode),
		Questions:       i.Questions,
		ApprovedBy:      optionalString(i.ApprovedBy),
		ApprovedAt:      i.ApprovedAt,
		ScheduledAt:     i.Window.ScheduledAt,
		ExpiresAt:       i.Window.ExpiresAt,
		Timezone:        i.Window.Timezone,
		TokenHash:       optionalString(i.Access.TokenHash),
		Link:            optionalString(i.Access.Link),
		Consumed:        i.Access.Consumed,
		ConsumedAt:      i.Access.ConsumedAt,
		IssuedAt:        i.Access.IssuedAt,
		Monitoring:      i.Monitoring,
		CancelReason:    optionalString(i.CancelReason),
		StartedAt:       i.StartedAt,
		CompletedAt:     i.CompletedAt,
		EndedAt:         i.EndedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if i.Precheck != nil {
		checks := make([]persistence.PrecheckCheck, 0, len(i.Precheck.Checks))
		for _, check := range i.Precheck.Checks {
			checks = append(checks, persistence.PrecheckCheck{
				Kind:      string(check.Kind),
				Status:    string(check.Status),
				Reason:    string(check.Reason),
				Message:   check.Message,
				LatencyMS: check.Latency.Milliseconds(),
			})
		}
		out.Precheck = &persistence.Precheck{
			Status:     string(i.Precheck.Status),
			Checks:     checks,
			Attested:   i.Precheck.Attested,
			CanProceed: i.Precheck.CanProceed,
			RecordedAt: i.Precheck.RecordedAt,
		}
	}
	if i.Decision != nil {
		out.Decision = &persistence.Decision{
			Status:    string(i.Decision.Status),
			DecidedBy: i.Decision.DecidedBy,
			DecidedAt: i.Decision.DecidedAt,
			Note:      i.Decision.Note,
		}
	}
	return out
}

func toApplicationInterview(model persistence.Interview) (application.Interview, error) {
	status, err := lifecycle.ParseStatus(model.Status)
	if err != nil {
		return application.Interview{}, fmt.Errorf("interview %s: %w", model.ID, err)
	}
	out := application.Interview{
		ID:          model.ID,
		JobID:       model.JobID,
		CandidateID: model.CandidateID,
		CreatedBy:   model.CreatedBy,
		Status:      status,
		Version:     model.Version,
		Config: application.InterviewConfig{
			QuestionCount:   model.QuestionCount,
			DurationMinutes: model.DurationMinutes,
			Mode:            application.InterviewMode(model.InterviewMode),
		},
		Questions:  model.Questions,
		ApprovedBy: derefString(model.ApprovedBy),
		ApprovedAt: model.ApprovedAt,
		Window: scheduler.Window{
			ScheduledAt: model.ScheduledAt,
			ExpiresAt:   model.ExpiresAt,
			Timezone:    model.Timezone,
		},
		Access: application.AccessState{
			TokenHash:  derefString(model.TokenHash),
			Link:       derefString(model.Link),
			Consumed:   model.Consumed,
			ConsumedAt: model.ConsumedAt,
			IssuedAt:   model.IssuedAt,
		},
		Monitoring:   model.Monitoring,
		CancelReason: derefString(model.CancelReason),
		StartedAt:    model.StartedAt,
		CompletedAt:  model.CompletedAt,
		EndedAt:      model.EndedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if model.Precheck != nil {
		checks := make([]readiness.Check, 0, len(model.Precheck.Checks))
		for _, stored := range model.Precheck.Checks {
			kind := readiness.CheckKind(stored.Kind)
			checks = append(checks, readiness.Check{
				ID:      string(kind),
				Kind:    kind,
				Status:  readiness.CheckStatus(stored.Status),
				Reason:  readiness.FailureReason(stored.Reason),
				Message: stored.Message,
				Latency: time.Duration(stored.LatencyMS) * time.Millisecond,
			})
		}
		out.Precheck = &application.Precheck{
			Status:     readiness.PrecheckStatus(model.Precheck.Status),
			Checks:     checks,
			Attested:   model.Precheck.Attested,
			CanProceed: model.Precheck.CanProceed,
			RecordedAt: model.Precheck.RecordedAt,
		}
	}
	if model.Decision != nil {
		out.Decision = &application.Decision{
			Status:    application.DecisionStatus(model.Decision.Status),
			DecidedBy: model.Decision.DecidedBy,
			DecidedAt: model.Decision.DecidedAt,
			Note:      model.Decision.Note,
		}
	}
	return out, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
