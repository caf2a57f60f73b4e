package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/scheduler"
	"github.com/example/interview-engine/internal/testfixtures"
)

func newEnv(t *testing.T, deps testfixtures.InterviewServiceDeps) *testfixtures.InterviewEnv {
	t.Helper()
	return testfixtures.NewServiceFactory().NewInterviewEnv(deps)
}

func createInterview(t *testing.T, env *testfixtures.InterviewEnv) application.Interview {
	t.Helper()
	rec, err := env.Service.CreateInterview(context.Background(), application.CreateInterviewParams{
		Principal:   testfixtures.Recruiter,
		JobID:       "job-1",
		CandidateID: "candidate-1",
		Config:      testfixtures.DefaultConfig(),
	})
	require.NoError(t, err)
	return rec
}

// readyInterview walks a new record to ready and returns the issued grant.
func readyInterview(t *testing.T, env *testfixtures.InterviewEnv) (application.Interview, application.AccessGrant) {
	t.Helper()
	ctx := context.Background()
	rec := createInterview(t, env)

	_, err := env.Service.GenerateQuestions(ctx, application.GenerateQuestionsParams{
		Principal:   testfixtures.Recruiter,
		InterviewID: rec.ID,
		Questions:   testfixtures.Questions(3),
	})
	require.NoError(t, err)

	grant, err := env.Service.MarkReady(ctx, testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)

	rec, err = env.Service.GetInterview(ctx, testfixtures.Recruiter, rec.ID)
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusReady, rec.Status)
	return rec, grant
}

// scheduledInterview walks a new record to scheduled, starting in an hour.
func scheduledInterview(t *testing.T, env *testfixtures.InterviewEnv) (application.Interview, application.AccessGrant) {
	t.Helper()
	rec, grant := readyInterview(t, env)
	rec, err := env.Service.ScheduleInterview(context.Background(), application.ScheduleParams{
		Principal:   testfixtures.Recruiter,
		InterviewID: rec.ID,
		Window:      window(env.Clock.Current().Add(time.Hour), time.Time{}, "Europe/Berlin"),
	})
	require.NoError(t, err)
	require.Equal(t, lifecycle.StatusScheduled, rec.Status)
	return rec, grant
}

func window(scheduledAt, expiresAt time.Time, tz string) scheduler.Window {
	w := scheduler.Window{Timezone: tz}
	if !scheduledAt.IsZero() {
		w.ScheduledAt = &scheduledAt
	}
	if !expiresAt.IsZero() {
		w.ExpiresAt = &expiresAt
	}
	return w
}

func admitParams(id, token string, passed bool) application.AdmitParams {
	return application.AdmitParams{
		CandidateCredentials: application.CandidateCredentials{InterviewID: id, AccessToken: token},
		ReadinessPassed:      passed,
	}
}

// requireWalksTable asserts the history is a connected path through the
// lifecycle graph starting at setup.
func requireWalksTable(t *testing.T, env *testfixtures.InterviewEnv, id string) []application.TransitionRecord {
	t.Helper()
	history, err := env.Service.History(context.Background(), testfixtures.Admin, id)
	require.NoError(t, err)
	prev := lifecycle.Initial
	for _, entry := range history {
		require.Equal(t, prev, entry.From, "history must be contiguous")
		require.True(t, lifecycle.Adjacent(entry.From, entry.To), "%s -> %s is not an edge", entry.From, entry.To)
		prev = entry.To
	}
	return history
}

func ptrWindow(w scheduler.Window) *scheduler.Window {
	return &w
}
