package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/readiness"
	"github.com/example/interview-engine/internal/scheduler"
)

var interviewCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// FastTokenParams keep argon2id cheap enough for tests that issue many tokens.
var FastTokenParams = application.Argon2idParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Default principals used across tests.
var (
	Recruiter      = application.Principal{UserID: "recruiter-1"}
	OtherRecruiter = application.Principal{UserID: "recruiter-2"}
	Admin          = application.Principal{UserID: "admin-1", IsAdmin: true}
)

// DefaultConfig is a valid interview configuration.
func DefaultConfig() application.InterviewConfig {
	return application.InterviewConfig{QuestionCount: 3, DurationMinutes: 30, Mode: application.ModeVideo}
}

// Questions returns n distinct question texts.
func Questions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Question %d?", i+1)
	}
	return out
}

// InterviewOption configures a seeded interview.
type InterviewOption func(*application.Interview)

// NewInterview returns a deterministic record owned by Recruiter in setup.
// It is meant to be seeded straight into a repository.
func NewInterview(opts ...InterviewOption) application.Interview {
	idx := atomic.AddUint64(&interviewCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	rec := application.Interview{
		ID:          fmt.Sprintf("interview-%03d", idx),
		JobID:       fmt.Sprintf("job-%03d", idx),
		CandidateID: fmt.Sprintf("candidate-%03d", idx),
		CreatedBy:   Recruiter.UserID,
		Status:      lifecycle.StatusSetup,
		Version:     1,
		Config:      DefaultConfig(),
		Window:      scheduler.Window{Timezone: scheduler.DefaultTimezone},
		Monitoring:  map[string]int{},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// WithID overrides the identifier.
func WithID(id string) InterviewOption {
	return func(rec *application.Interview) { rec.ID = id }
}

// WithStatus overrides the lifecycle status. Statuses past setup get a
// question set so the record is internally consistent.
func WithStatus(status lifecycle.Status) InterviewOption {
	return func(rec *application.Interview) {
		rec.Status = status
		if status != lifecycle.StatusSetup && len(rec.Questions) == 0 {
			rec.Questions = Questions(rec.Config.QuestionCount)
		}
	}
}

// WithOwner overrides the creating recruiter.
func WithOwner(userID string) InterviewOption {
	return func(rec *application.Interview) { rec.CreatedBy = userID }
}

// WithWindow sets the scheduling window. A zero expiresAt leaves it unset.
func WithWindow(scheduledAt, expiresAt time.Time) InterviewOption {
	return func(rec *application.Interview) {
		if !scheduledAt.IsZero() {
			rec.Window.ScheduledAt = &scheduledAt
		}
		if !expiresAt.IsZero() {
			rec.Window.ExpiresAt = &expiresAt
		}
	}
}

// WithAccessToken stores the hash of token hashed with FastTokenParams.
func WithAccessToken(token string) InterviewOption {
	return func(rec *application.Interview) {
		hash, err := application.HashAccessToken(token, FastTokenParams)
		if err != nil {
			panic(fmt.Sprintf("hash fixture token: %v", err))
		}
		issued := rec.CreatedAt
		rec.Access.TokenHash = hash
		rec.Access.Link = "https://interviews.test/interview/" + rec.ID
		rec.Access.IssuedAt = &issued
	}
}

// WithConsumedToken marks the access token as used.
func WithConsumedToken(at time.Time) InterviewOption {
	return func(rec *application.Interview) {
		rec.Access.Consumed = true
		rec.Access.ConsumedAt = &at
	}
}

// PassingChecks returns passed camera, microphone and network checks.
func PassingChecks() []readiness.Check {
	checks := make([]readiness.Check, 0, 3)
	for _, kind := range readiness.Kinds() {
		check := readiness.NewCheck(kind)
		check.Status = readiness.CheckPassed
		if kind == readiness.KindNetwork {
			check.Latency = 80 * time.Millisecond
		}
		checks = append(checks, check)
	}
	return checks
}

// FullAttestation returns an attestation with every flag confirmed.
func FullAttestation() readiness.Attestation {
	var attestation readiness.Attestation
	for _, flag := range readiness.Flags() {
		attestation = attestation.Set(flag, true)
	}
	return attestation
}

// PassingReport is a report that satisfies the readiness gate.
func PassingReport() readiness.Report {
	return readiness.Report{Checks: PassingChecks(), Attestation: FullAttestation()}
}

// FailingReport is a fully attested report whose kind check failed for reason.
func FailingReport(kind readiness.CheckKind, reason readiness.FailureReason) readiness.Report {
	report := PassingReport()
	for i := range report.Checks {
		if report.Checks[i].Kind == kind {
			report.Checks[i].Status = readiness.CheckFailed
			report.Checks[i].Reason = reason
		}
	}
	return report
}
