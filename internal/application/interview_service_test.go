package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/events"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/testfixtures"
)

func TestCreateInterviewValidatesInput(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()

	_, err := env.Service.CreateInterview(ctx, application.CreateInterviewParams{
		Principal: testfixtures.Recruiter,
		Config:    application.InterviewConfig{QuestionCount: 0, DurationMinutes: 500, Mode: "hologram"},
		Window:    ptrWindow(window(env.Clock.Current().Add(-time.Minute), time.Time{}, "Mars/Olympus")),
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	for _, field := range []string{"job_id", "candidate_id", "question_count", "duration_minutes", "interview_mode", "scheduled_at", "timezone"} {
		assert.Contains(t, vErr.FieldErrors, field)
	}
	assert.Equal(t, application.ClassInvalidRequest, application.Classify(err))

	_, err = env.Service.CreateInterview(ctx, application.CreateInterviewParams{Config: testfixtures.DefaultConfig()})
	assert.ErrorIs(t, err, application.ErrUnauthorized)
}

func TestCreateInterviewStoresOptionalWindow(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	start := env.Clock.Current().Add(2 * time.Hour)

	rec, err := env.Service.CreateInterview(context.Background(), application.CreateInterviewParams{
		Principal:   testfixtures.Recruiter,
		JobID:       "job-1",
		CandidateID: "candidate-1",
		Config:      testfixtures.DefaultConfig(),
		Window:      ptrWindow(window(start, time.Time{}, "")),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSetup, rec.Status)
	require.NotNil(t, rec.Window.ExpiresAt)
	assert.Equal(t, start.Add(application.DefaultExpiryWindow), *rec.Window.ExpiresAt)
	assert.Equal(t, "UTC", rec.Window.Timezone)
}

// Scenario A: the scheduled happy path from creation to a recorded decision.
func TestScheduledInterviewHappyPath(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()

	rec, grant := scheduledInterview(t, env)
	assert.Equal(t, testfixtures.Recruiter.UserID, rec.ApprovedBy)
	assert.Equal(t, "Europe/Berlin", rec.Window.Timezone)
	assert.True(t, strings.HasPrefix(grant.Link, testfixtures.PublicBaseURL+"/interview/"+rec.ID+"?token="))
	assert.NotContains(t, rec.Access.Link, grant.Token)
	assert.NotContains(t, rec.Access.TokenHash, grant.Token)

	report := testfixtures.PassingReport()
	admitted, err := env.Gateway.Admit(ctx, application.AdmitParams{
		CandidateCredentials: application.CandidateCredentials{InterviewID: rec.ID, AccessToken: grant.Token},
		ReadinessPassed:      report.CanProceed(),
		Precheck:             &report,
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInProgress, admitted.Status)
	assert.True(t, admitted.Access.Consumed)
	require.NotNil(t, admitted.Precheck)
	assert.True(t, admitted.Precheck.CanProceed)
	assert.Equal(t, 5, admitted.Precheck.Attested)

	completed, err := env.Service.CompleteInterview(ctx, application.CompleteParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	decided, err := env.Service.SetDecision(ctx, application.DecisionParams{
		Principal:   testfixtures.Recruiter,
		InterviewID: rec.ID,
		Status:      application.DecisionShortlisted,
		Note:        " strong ",
	})
	require.NoError(t, err)
	require.NotNil(t, decided.Decision)
	assert.Equal(t, "strong", decided.Decision.Note)
	assert.Equal(t, lifecycle.StatusCompleted, decided.Status)

	history := requireWalksTable(t, env, rec.ID)
	var path []lifecycle.Status
	for _, entry := range history {
		path = append(path, entry.To)
	}
	assert.Equal(t, []lifecycle.Status{
		lifecycle.StatusQuestionsGenerated,
		lifecycle.StatusReady,
		lifecycle.StatusScheduled,
		lifecycle.StatusInProgress,
		lifecycle.StatusCompleted,
	}, path)
	assert.Equal(t, application.CandidateActor, history[3].Actor)

	statusEvents := env.Events.Events(events.TypeStatusChanged)
	require.Len(t, statusEvents, len(history))
	assert.Equal(t, "in_progress", statusEvents[3].To)
}

func TestGenerateQuestionsGuards(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec := createInterview(t, env)

	_, err := env.Service.GenerateQuestions(ctx, application.GenerateQuestionsParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Questions: []string{"ok", "  "},
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "questions[1]")

	_, err = env.Service.GenerateQuestions(ctx, application.GenerateQuestionsParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Questions: testfixtures.Questions(51),
	})
	require.ErrorAs(t, err, &vErr)

	_, err = env.Service.MarkReady(ctx, testfixtures.Recruiter, rec.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	stored, err := env.Service.GetInterview(ctx, testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSetup, stored.Status)
	assert.Empty(t, stored.Questions)
}

func TestMarkReadyIsIdempotent(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	rec, grant := readyInterview(t, env)

	again, err := env.Service.MarkReady(context.Background(), testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Token)
	assert.Equal(t, rec.Access.Link, again.Link)

	_, err = env.Gateway.CandidateView(context.Background(), application.CandidateCredentials{InterviewID: rec.ID, AccessToken: grant.Token})
	assert.NoError(t, err, "original token must stay valid")
}

func TestScheduleInterviewRules(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, _ := readyInterview(t, env)
	now := env.Clock.Current()

	_, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(now, time.Time{}, ""),
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "scheduled_at")

	start := now.Add(time.Hour)
	_, err = env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(start, start.Add(-time.Minute), ""),
	})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "expires_at")

	scheduled, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(start, time.Time{}, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, start.Add(application.DefaultExpiryWindow), *scheduled.Window.ExpiresAt)

	same, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(start, time.Time{}, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, scheduled.Version, same.Version)

	_, err = env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(start.Add(time.Hour), time.Time{}, ""),
	})
	require.ErrorAs(t, err, &vErr)

	moved, err := env.Service.RescheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(start.Add(time.Hour), time.Time{}, "Asia/Tokyo"),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusScheduled, moved.Status)
	assert.Equal(t, "Asia/Tokyo", moved.Window.Timezone)
}

func TestScheduleIsIdempotentAfterStartTimePasses(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, grant := scheduledInterview(t, env)

	env.Clock.Advance(2 * time.Hour)

	again, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusScheduled, again.Status)
	assert.Equal(t, rec.Version, again.Version)

	same, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: rec.Window,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.Version, same.Version)

	_, err = env.Gateway.CandidateView(ctx, application.CandidateCredentials{InterviewID: rec.ID, AccessToken: grant.Token})
	assert.NoError(t, err)
}

func TestRescheduleEditsWindowWithoutTransition(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	start := env.Clock.Current().Add(4 * time.Hour)

	draft := createInterview(t, env)
	moved, err := env.Service.RescheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: draft.ID, Window: window(start, time.Time{}, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusSetup, moved.Status)
	assert.Equal(t, start, *moved.Window.ScheduledAt)

	ready, _ := readyInterview(t, env)
	moved, err = env.Service.RescheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: ready.ID, Window: window(start, time.Time{}, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusReady, moved.Status)

	history, err := env.Service.History(ctx, testfixtures.Recruiter, ready.ID)
	require.NoError(t, err)
	for _, entry := range history {
		assert.NotEqual(t, lifecycle.TransitionSchedule, entry.Transition)
	}
}

func TestScheduleFallsBackToCreationWindow(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	start := env.Clock.Current().Add(3 * time.Hour)

	rec, err := env.Service.CreateInterview(ctx, application.CreateInterviewParams{
		Principal: testfixtures.Recruiter, JobID: "job", CandidateID: "cand",
		Config: testfixtures.DefaultConfig(), Window: ptrWindow(window(start, time.Time{}, "")),
	})
	require.NoError(t, err)
	_, err = env.Service.GenerateQuestions(ctx, application.GenerateQuestionsParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Questions: testfixtures.Questions(2),
	})
	require.NoError(t, err)
	_, err = env.Service.MarkReady(ctx, testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)

	scheduled, err := env.Service.ScheduleInterview(ctx, application.ScheduleParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, start, *scheduled.Window.ScheduledAt)
}

func TestConfigFrozenOnceStarted(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, grant := readyInterview(t, env)

	updated := testfixtures.DefaultConfig()
	updated.DurationMinutes = 45
	changed, err := env.Service.UpdateConfig(ctx, application.UpdateConfigParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Config: updated})
	require.NoError(t, err)
	assert.Equal(t, 45, changed.Config.DurationMinutes)

	_, err = env.Gateway.Admit(ctx, admitParams(rec.ID, grant.Token, true))
	require.NoError(t, err)

	updated.DurationMinutes = 60
	_, err = env.Service.UpdateConfig(ctx, application.UpdateConfigParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Config: updated})
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
	assert.NotErrorIs(t, err, application.ErrAlreadyTerminal)

	_, err = env.Service.RescheduleInterview(ctx, application.ScheduleParams{
		Principal: testfixtures.Recruiter, InterviewID: rec.ID, Window: window(env.Clock.Current().Add(time.Hour), time.Time{}, ""),
	})
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
}

// Scenario D: cancellation is idempotent and final.
func TestCancelInterview(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, grant := scheduledInterview(t, env)

	_, err := env.Service.CancelInterview(ctx, application.CancelParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)

	cancelled, err := env.Service.CancelInterview(ctx, application.CancelParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Reason: "role filled"})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCancelled, cancelled.Status)
	assert.Equal(t, "role filled", cancelled.CancelReason)

	again, err := env.Service.CancelInterview(ctx, application.CancelParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Reason: "twice"})
	require.NoError(t, err)
	assert.Equal(t, cancelled.Version, again.Version)
	assert.Equal(t, "role filled", again.CancelReason)

	_, err = env.Gateway.Admit(ctx, admitParams(rec.ID, grant.Token, true))
	assert.ErrorIs(t, err, application.ErrAlreadyTerminal)
	assert.Equal(t, application.ClassUnusable, application.Classify(err))

	_, err = env.Service.CompleteInterview(ctx, application.CompleteParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID})
	assert.ErrorIs(t, err, application.ErrAlreadyTerminal)

	history := requireWalksTable(t, env, rec.ID)
	last := history[len(history)-1]
	assert.Equal(t, lifecycle.StatusCancelled, last.To)
	assert.Equal(t, "role filled", last.Reason)
}

func TestCancelRejectedOnceStarted(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, grant := readyInterview(t, env)
	_, err := env.Gateway.Admit(ctx, admitParams(rec.ID, grant.Token, true))
	require.NoError(t, err)

	_, err = env.Service.CancelInterview(ctx, application.CancelParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Reason: "late"})
	var tErr *lifecycle.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, lifecycle.StatusInProgress, tErr.From)
}

func TestSendInviteRotatesToken(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, first := scheduledInterview(t, env)

	invite, err := env.Service.SendInvite(ctx, testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, invite.Token)

	_, err = env.Gateway.CandidateView(ctx, application.CandidateCredentials{InterviewID: rec.ID, AccessToken: first.Token})
	assert.ErrorIs(t, err, application.ErrInvalidToken)
	view, err := env.Gateway.CandidateView(ctx, application.CandidateCredentials{InterviewID: rec.ID, AccessToken: invite.Token})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusScheduled, view.Status)

	invites := env.Events.Events(events.TypeInviteRequested)
	require.Len(t, invites, 1)
	assert.Equal(t, invite.Link, invites[0].Link)
	assert.Equal(t, "Europe/Berlin", invites[0].Timezone)
	assert.Equal(t, "candidate-1", invites[0].CandidateID)

	_, err = env.Gateway.Admit(ctx, admitParams(rec.ID, invite.Token, true))
	require.NoError(t, err)
	_, err = env.Service.SendInvite(ctx, testfixtures.Recruiter, rec.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
}

func TestSetDecisionRequiresCompleted(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec, _ := readyInterview(t, env)

	_, err := env.Service.SetDecision(ctx, application.DecisionParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Status: application.DecisionRejected})
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	_, err = env.Service.SetDecision(ctx, application.DecisionParams{Principal: testfixtures.Recruiter, InterviewID: rec.ID, Status: "maybe"})
	var vErr *application.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestOwnershipIsEnforced(t *testing.T) {
	env := newEnv(t, testfixtures.InterviewServiceDeps{})
	ctx := context.Background()
	rec := createInterview(t, env)

	_, err := env.Service.GetInterview(ctx, testfixtures.OtherRecruiter, rec.ID)
	assert.ErrorIs(t, err, application.ErrUnauthorized)
	_, err = env.Service.CancelInterview(ctx, application.CancelParams{Principal: testfixtures.OtherRecruiter, InterviewID: rec.ID, Reason: "nope"})
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = env.Service.GetInterview(ctx, testfixtures.Admin, rec.ID)
	assert.NoError(t, err)

	_, err = env.Service.GetInterview(ctx, testfixtures.Recruiter, "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)

	mine, err := env.Service.ListInterviews(ctx, testfixtures.OtherRecruiter, application.InterviewFilter{})
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := env.Service.ListInterviews(ctx, testfixtures.Admin, application.InterviewFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListInterviewsExpiresLazily(t *testing.T) {
	now := testfixtures.ReferenceTime()
	stale := testfixtures.NewInterview(
		testfixtures.WithStatus(lifecycle.StatusReady),
		testfixtures.WithWindow(time.Time{}, now.Add(-time.Minute)),
	)
	fresh := testfixtures.NewInterview(
		testfixtures.WithStatus(lifecycle.StatusReady),
		testfixtures.WithWindow(time.Time{}, now.Add(time.Hour)),
	)
	repo := testfixtures.NewMemoryInterviewRepository(stale, fresh)
	env := newEnv(t, testfixtures.InterviewServiceDeps{Repository: repo})
	ctx := context.Background()

	ready, err := env.Service.ListInterviews(ctx, testfixtures.Recruiter, application.InterviewFilter{Statuses: []lifecycle.Status{lifecycle.StatusReady}})
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, fresh.ID, ready[0].ID)

	stored, err := repo.GetInterview(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusExpired, stored.Status)

	history, err := repo.ListTransitions(ctx, stale.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, application.SystemActor, history[0].Actor)
	assert.Equal(t, lifecycle.TransitionExpire, history[0].Transition)
}

func TestListInterviewsExpiredFilterFindsStaleRecords(t *testing.T) {
	now := testfixtures.ReferenceTime()
	stale := testfixtures.NewInterview(
		testfixtures.WithStatus(lifecycle.StatusReady),
		testfixtures.WithWindow(time.Time{}, now.Add(-time.Minute)),
	)
	fresh := testfixtures.NewInterview(
		testfixtures.WithStatus(lifecycle.StatusScheduled),
		testfixtures.WithWindow(now.Add(time.Hour), now.Add(2*time.Hour)),
	)
	cancelled := testfixtures.NewInterview(testfixtures.WithStatus(lifecycle.StatusCancelled))
	repo := testfixtures.NewMemoryInterviewRepository(stale, fresh, cancelled)
	env := newEnv(t, testfixtures.InterviewServiceDeps{Repository: repo})
	ctx := context.Background()

	expired, err := env.Service.ListInterviews(ctx, testfixtures.Recruiter, application.InterviewFilter{Statuses: []lifecycle.Status{lifecycle.StatusExpired}})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
	assert.Equal(t, lifecycle.StatusExpired, expired[0].Status)

	stored, err := repo.GetInterview(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusExpired, stored.Status)

	unchanged, err := repo.GetInterview(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusScheduled, unchanged.Status)
}

func TestVersionConflictIsRetried(t *testing.T) {
	seed := testfixtures.NewInterview()
	repo := testfixtures.NewMemoryInterviewRepository(seed)
	raced := false
	repo.BeforeSave = func(rec application.Interview) {
		if raced {
			return
		}
		raced = true
		rival, err := repo.GetInterview(context.Background(), rec.ID)
		require.NoError(t, err)
		rival.Version++
		rival.Config.DurationMinutes = 90
		repo.Put(rival)
	}
	env := newEnv(t, testfixtures.InterviewServiceDeps{Repository: repo})

	rec, err := env.Service.GenerateQuestions(context.Background(), application.GenerateQuestionsParams{
		Principal: testfixtures.Recruiter, InterviewID: seed.ID, Questions: testfixtures.Questions(2),
	})
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusQuestionsGenerated, rec.Status)
	assert.Equal(t, 90, rec.Config.DurationMinutes, "retry must re-read the winning write")
	assert.Equal(t, seed.Version+2, rec.Version)
}

func TestVersionConflictExhaustsRetries(t *testing.T) {
	seed := testfixtures.NewInterview()
	repo := testfixtures.NewMemoryInterviewRepository(seed)
	repo.BeforeSave = func(rec application.Interview) {
		rival, err := repo.GetInterview(context.Background(), rec.ID)
		require.NoError(t, err)
		rival.Version++
		repo.Put(rival)
	}
	env := newEnv(t, testfixtures.InterviewServiceDeps{
		Repository: repo,
		Options:    []application.Option{application.WithMaxAttempts(2)},
	})

	_, err := env.Service.GenerateQuestions(context.Background(), application.GenerateQuestionsParams{
		Principal: testfixtures.Recruiter, InterviewID: seed.ID, Questions: testfixtures.Questions(2),
	})
	assert.True(t, errors.Is(err, application.ErrConflict))
	assert.Equal(t, application.ClassRetryable, application.Classify(err))
	assert.Zero(t, repo.Saves())
}
