package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/interview-engine/internal/events"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/scheduler"
)

// InterviewService drives the recruiter side of the interview lifecycle.
// Every mutation dispatches through lifecycle.Next under the per-record lock.
type InterviewService struct {
	*engine
}

// NewInterviewService constructs the service with the provided dependencies.
func NewInterviewService(repo InterviewRepository, idGenerator func() string, now func() time.Time, opts ...Option) *InterviewService {
	return &InterviewService{engine: newEngine(repo, idGenerator, now, opts...)}
}

// AccessGateway returns the gateway sharing this service's store, lock and clock.
func (s *InterviewService) AccessGateway() *AccessGateway {
	return &AccessGateway{engine: s.engine}
}

func (s *InterviewService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InterviewService", operation, attrs...)
}

func authorize(principal Principal, rec Interview) error {
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if principal.IsAdmin || rec.CreatedBy == principal.UserID {
		return nil
	}
	return ErrUnauthorized
}

// CreateInterview validates input and persists a new record in setup.
func (s *InterviewService) CreateInterview(ctx context.Context, params CreateInterviewParams) (interview Interview, err error) {
	if s == nil {
		err = fmt.Errorf("InterviewService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateInterview", "principal_id", params.Principal.UserID)
	defer func() {
		logOutcome(ctx, logger.With("interview_id", interview.ID), err, "failed to create interview", "interview created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	now := s.now()
	vErr := validateConfig(params.Config)
	if strings.TrimSpace(params.JobID) == "" {
		vErr.add("job_id", "job_id is required")
	}
	if strings.TrimSpace(params.CandidateID) == "" {
		vErr.add("candidate_id", "candidate_id is required")
	}
	window := scheduler.Window{Timezone: scheduler.DefaultTimezone}
	if params.Window != nil {
		window = scheduler.Normalize(*params.Window, s.expiryWindow)
		vErr.merge(windowViolations(scheduler.Validate(window, now)))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	interview = Interview{
		ID:          s.idGenerator(),
		JobID:       strings.TrimSpace(params.JobID),
		CandidateID: strings.TrimSpace(params.CandidateID),
		CreatedBy:   params.Principal.UserID,
		Status:      lifecycle.Initial,
		Version:     1,
		Config:      params.Config,
		Window:      window,
		Monitoring:  map[string]int{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.repo == nil {
		return
	}
	interview, err = s.repo.CreateInterview(ctx, interview)
	return
}

// UpdateConfig replaces the configuration while the record is still editable.
func (s *InterviewService) UpdateConfig(ctx context.Context, params UpdateConfigParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "UpdateConfig", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to update config", "config updated") }()

	if vErr := validateConfig(params.Config); vErr.HasErrors() {
		err = vErr
		return
	}
	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		if err := lifecycle.Guard(rec.Status, "update_config", lifecycle.EditableStatuses()...); err != nil {
			return err
		}
		if rec.Config == params.Config {
			return nil
		}
		rec.Config = params.Config
		c.touch()
		return nil
	})
	return
}

// GenerateQuestions stores the question set and moves setup to questions_generated.
func (s *InterviewService) GenerateQuestions(ctx context.Context, params GenerateQuestionsParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "GenerateQuestions", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to generate questions", "questions generated") }()

	questions, vErr := validateQuestions(params.Questions)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		outcome, err := c.apply(rec, lifecycle.TransitionGenerateQuestions, "")
		if err != nil || !outcome.Changed {
			return err
		}
		rec.Questions = questions
		return nil
	})
	return
}

// MarkReady records the approval, moves questions_generated to ready and
// issues the single-use access token. Links that were never scheduled expire
// after the default expiry window. Calling it on a record that is already
// ready succeeds without issuing a new token.
func (s *InterviewService) MarkReady(ctx context.Context, principal Principal, interviewID string) (grant AccessGrant, err error) {
	logger := s.loggerWith(ctx, "MarkReady", "principal_id", principal.UserID, "interview_id", interviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to mark interview ready", "interview ready") }()

	var rec Interview
	rec, err = s.mutate(ctx, interviewID, principal.UserID, func(rec *Interview, c *change) error {
		grant = AccessGrant{}
		if err := authorize(principal, *rec); err != nil {
			return err
		}
		outcome, err := c.apply(rec, lifecycle.TransitionMarkReady, "")
		if err != nil || !outcome.Changed {
			return err
		}
		rec.ApprovedBy = principal.UserID
		rec.ApprovedAt = timePtr(c.now)
		if rec.Window.ExpiresAt == nil {
			rec.Window.ExpiresAt = timePtr(c.now.Add(s.expiryWindow))
		}
		grant, err = s.issueToken(rec, c)
		return err
	})
	if err != nil {
		grant = AccessGrant{}
		return
	}
	if grant.InterviewID == "" {
		grant = AccessGrant{InterviewID: rec.ID, Link: rec.Access.Link, ExpiresAt: rec.Window.ExpiresAt}
	}
	return
}

// ScheduleInterview validates the window and moves ready to scheduled. A
// window omitted here falls back to the one given at creation. Scheduling an
// already scheduled record with the same window is a no-op; changing the
// window goes through RescheduleInterview.
func (s *InterviewService) ScheduleInterview(ctx context.Context, params ScheduleParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "ScheduleInterview", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to schedule interview", "interview scheduled") }()

	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		requested := params.Window
		if requested.ScheduledAt == nil && rec.Window.ScheduledAt != nil {
			requested = rec.Window
		}
		window := scheduler.Normalize(requested, s.expiryWindow)
		if rec.Status == lifecycle.StatusScheduled {
			if sameWindow(rec.Window, window) {
				return nil
			}
			vErr := &ValidationError{}
			vErr.add("scheduled_at", "interview is already scheduled; reschedule to change the window")
			return vErr
		}
		if vErr := windowViolations(scheduler.Validate(window, c.now)); vErr.HasErrors() {
			return vErr
		}
		if _, err := c.apply(rec, lifecycle.TransitionSchedule, ""); err != nil {
			return err
		}
		rec.Window = window
		return nil
	})
	return
}

// RescheduleInterview edits the window of a record that has not started. It
// enforces the same invariants as scheduling and never changes the status.
func (s *InterviewService) RescheduleInterview(ctx context.Context, params ScheduleParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "RescheduleInterview", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to reschedule interview", "interview rescheduled") }()

	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		if err := lifecycle.Guard(rec.Status, "reschedule", lifecycle.EditableStatuses()...); err != nil {
			return err
		}
		window := scheduler.Normalize(params.Window, s.expiryWindow)
		if vErr := windowViolations(scheduler.Validate(window, c.now)); vErr.HasErrors() {
			return vErr
		}
		if sameWindow(rec.Window, window) {
			return nil
		}
		rec.Window = window
		c.touch()
		return nil
	})
	return
}

// SendInvite rotates the unconsumed access token and publishes an invite
// event carrying the candidate link. The status does not change.
func (s *InterviewService) SendInvite(ctx context.Context, principal Principal, interviewID string) (grant AccessGrant, err error) {
	logger := s.loggerWith(ctx, "SendInvite", "principal_id", principal.UserID, "interview_id", interviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to send invite", "invite requested") }()

	_, err = s.mutate(ctx, interviewID, principal.UserID, func(rec *Interview, c *change) error {
		grant = AccessGrant{}
		if err := authorize(principal, *rec); err != nil {
			return err
		}
		if err := lifecycle.Guard(rec.Status, "send_invite", lifecycle.StatusReady, lifecycle.StatusScheduled); err != nil {
			return err
		}
		if rec.Access.Consumed {
			return ErrAlreadyConsumed
		}
		var err error
		grant, err = s.issueToken(rec, c)
		if err != nil {
			return err
		}
		c.emit(events.Event{
			ID:          s.idGenerator(),
			Type:        events.TypeInviteRequested,
			InterviewID: rec.ID,
			CandidateID: rec.CandidateID,
			Actor:       principal.UserID,
			Link:        grant.Link,
			ScheduledAt: cloneTime(rec.Window.ScheduledAt),
			ExpiresAt:   cloneTime(rec.Window.ExpiresAt),
			Timezone:    rec.Window.Timezone,
			OccurredAt:  c.now,
		})
		return nil
	})
	if err != nil {
		grant = AccessGrant{}
	}
	return
}

// CancelInterview moves a record that has not started to cancelled. The
// reason is required. Cancelling a cancelled record succeeds without change.
func (s *InterviewService) CancelInterview(ctx context.Context, params CancelParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "CancelInterview", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to cancel interview", "interview cancelled") }()

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		vErr := &ValidationError{}
		vErr.add("reason", "reason is required")
		err = vErr
		return
	}
	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		outcome, err := c.apply(rec, lifecycle.TransitionCancel, reason)
		if err != nil || !outcome.Changed {
			return err
		}
		rec.CancelReason = reason
		rec.EndedAt = timePtr(c.now)
		return nil
	})
	return
}

// CompleteInterview records that the candidate submission was received and
// freezes monitoring.
func (s *InterviewService) CompleteInterview(ctx context.Context, params CompleteParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "CompleteInterview", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to complete interview", "interview completed") }()

	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		outcome, err := c.apply(rec, lifecycle.TransitionComplete, "submission received")
		if err != nil || !outcome.Changed {
			return err
		}
		rec.CompletedAt = timePtr(c.now)
		rec.EndedAt = timePtr(c.now)
		return nil
	})
	return
}

// SetDecision stores the reviewer outcome of a completed interview.
func (s *InterviewService) SetDecision(ctx context.Context, params DecisionParams) (interview Interview, err error) {
	logger := s.loggerWith(ctx, "SetDecision", "principal_id", params.Principal.UserID, "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to set decision", "decision recorded") }()

	if !params.Status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "status must be one of shortlisted, rejected, on_hold")
		err = vErr
		return
	}
	interview, err = s.mutate(ctx, params.InterviewID, params.Principal.UserID, func(rec *Interview, c *change) error {
		if err := authorize(params.Principal, *rec); err != nil {
			return err
		}
		if err := lifecycle.Guard(rec.Status, "decide", lifecycle.StatusCompleted); err != nil {
			return err
		}
		rec.Decision = &Decision{
			Status:    params.Status,
			DecidedBy: params.Principal.UserID,
			DecidedAt: c.now,
			Note:      strings.TrimSpace(params.Note),
		}
		c.touch()
		return nil
	})
	return
}

// GetInterview returns the record after the lazy expiry check.
func (s *InterviewService) GetInterview(ctx context.Context, principal Principal, interviewID string) (Interview, error) {
	if principal.UserID == "" {
		return Interview{}, ErrUnauthorized
	}
	rec, err := s.read(ctx, interviewID)
	if err != nil {
		return Interview{}, err
	}
	if err := authorize(principal, rec); err != nil {
		return Interview{}, err
	}
	return rec, nil
}

// ListInterviews returns the principal's records, or every record for an
// administrator, newest first. Records past their deadline are expired
// before the status filter applies, so an expired filter sees them too.
func (s *InterviewService) ListInterviews(ctx context.Context, principal Principal, filter InterviewFilter) ([]Interview, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.repo == nil {
		return nil, fmt.Errorf("interview repository not configured")
	}
	if !principal.IsAdmin {
		filter.CreatedBy = principal.UserID
	}
	wanted := filter.Statuses
	if containsStatus(wanted, lifecycle.StatusExpired) {
		// Stale ready and scheduled rows only become expired once read.
		filter.Statuses = append([]lifecycle.Status(nil), wanted...)
		for _, status := range []lifecycle.Status{lifecycle.StatusReady, lifecycle.StatusScheduled} {
			if !containsStatus(filter.Statuses, status) {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	records, err := s.repo.ListInterviews(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Interview, 0, len(records))
	for _, rec := range records {
		if rec.Status.Admissible() && scheduler.IsExpired(rec.Window.ExpiresAt, now) {
			refreshed, err := s.read(ctx, rec.ID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			if err != nil {
				continue
			}
			rec = refreshed
		}
		if len(wanted) > 0 && !containsStatus(wanted, rec.Status) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// History returns the committed transitions of a record in order.
func (s *InterviewService) History(ctx context.Context, principal Principal, interviewID string) ([]TransitionRecord, error) {
	if _, err := s.GetInterview(ctx, principal, interviewID); err != nil {
		return nil, err
	}
	return s.repo.ListTransitions(ctx, interviewID)
}

func containsStatus(statuses []lifecycle.Status, status lifecycle.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}
