package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/readiness"
)

// Admission outcomes reported to metrics.
const (
	AdmissionAdmitted = "admitted"
	AdmissionRejected = "rejected"
)

// AccessGateway admits candidates into in_progress with a single-use token
// and serves the other token-authenticated candidate calls.
type AccessGateway struct {
	*engine
}

// NewAccessGateway constructs a gateway with its own store bindings. Prefer
// InterviewService.AccessGateway when both run in one process so they share
// a lock.
func NewAccessGateway(repo InterviewRepository, idGenerator func() string, now func() time.Time, opts ...Option) *AccessGateway {
	return &AccessGateway{engine: newEngine(repo, idGenerator, now, opts...)}
}

func (g *AccessGateway) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, g.logger, "AccessGateway", operation, attrs...)
}

// verifyToken authenticates a candidate against the stored hash.
func verifyToken(rec Interview, token string) error {
	err := VerifyAccessToken(rec.Access.TokenHash, strings.TrimSpace(token))
	if err == nil || errors.Is(err, ErrInvalidToken) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

// Admit resolves the record and, in order: rejects with ErrExpired when the
// deadline has passed (persisting the expiry), rejects other terminal records
// with ErrAlreadyTerminal, rejects a mismatched token with ErrInvalidToken and
// a used one with ErrAlreadyConsumed, rejects with ErrNotReady when the
// readiness gate has not passed, and otherwise moves ready or scheduled to
// in_progress and consumes the token in one versioned write. Concurrent
// calls with the same token serialise on the record: exactly one succeeds.
func (g *AccessGateway) Admit(ctx context.Context, params AdmitParams) (interview Interview, err error) {
	if g == nil {
		err = fmt.Errorf("AccessGateway is nil")
		return
	}

	logger := g.loggerWith(ctx, "Admit", "interview_id", params.InterviewID)
	defer func() {
		outcome := AdmissionAdmitted
		if err != nil {
			outcome = AdmissionRejected
		}
		g.metrics.ObserveAdmission(outcome)
		logOutcome(ctx, logger, err, "admission rejected", "candidate admitted")
	}()

	interview, err = g.mutate(ctx, params.InterviewID, CandidateActor, func(rec *Interview, c *change) error {
		switch {
		case rec.Status == lifecycle.StatusExpired:
			return ErrExpired
		case rec.Status.Terminal():
			return &lifecycle.TransitionError{From: rec.Status, To: lifecycle.StatusInProgress, Transition: lifecycle.TransitionStart}
		}
		if err := verifyToken(*rec, params.AccessToken); err != nil {
			return err
		}
		if rec.Access.Consumed {
			return ErrAlreadyConsumed
		}
		if !params.ReadinessPassed {
			return ErrNotReady
		}
		if _, err := c.apply(rec, lifecycle.TransitionStart, ""); err != nil {
			return err
		}
		rec.Access.Consumed = true
		rec.Access.ConsumedAt = timePtr(c.now)
		rec.StartedAt = timePtr(c.now)
		if params.Precheck != nil {
			rec.Precheck = snapshot(*params.Precheck, c)
		}
		return nil
	})
	return
}

// RecordPrecheck stores the candidate's latest readiness report. The
// snapshot is informational; admission re-evaluates the gate.
func (g *AccessGateway) RecordPrecheck(ctx context.Context, params PrecheckParams) (view CandidateView, err error) {
	logger := g.loggerWith(ctx, "RecordPrecheck", "interview_id", params.InterviewID)
	defer func() { logOutcome(ctx, logger, err, "failed to record precheck", "precheck recorded") }()

	var rec Interview
	rec, err = g.mutate(ctx, params.InterviewID, CandidateActor, func(rec *Interview, c *change) error {
		if err := verifyToken(*rec, params.AccessToken); err != nil {
			return err
		}
		if rec.Status == lifecycle.StatusExpired {
			return ErrExpired
		}
		if err := lifecycle.Guard(rec.Status, "record_precheck", lifecycle.StatusReady, lifecycle.StatusScheduled); err != nil {
			return err
		}
		rec.Precheck = snapshot(params.Report, c)
		c.touch()
		return nil
	})
	if err != nil {
		return
	}
	view = candidateView(rec)
	return
}

// RecordMonitoringEvent increments an integrity counter. Counters only move
// while the interview is in progress.
func (g *AccessGateway) RecordMonitoringEvent(ctx context.Context, params MonitoringParams) (counters map[string]int, err error) {
	logger := g.loggerWith(ctx, "RecordMonitoringEvent", "interview_id", params.InterviewID, "kind", params.Kind)
	defer func() { logOutcome(ctx, logger, err, "failed to record monitoring event", "monitoring event recorded") }()

	kind := strings.TrimSpace(params.Kind)
	count := params.Count
	if count == 0 {
		count = 1
	}
	vErr := &ValidationError{}
	if kind == "" {
		vErr.add("kind", "kind is required")
	}
	if count < 0 {
		vErr.add("count", "count must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var rec Interview
	rec, err = g.mutate(ctx, params.InterviewID, CandidateActor, func(rec *Interview, c *change) error {
		if err := verifyToken(*rec, params.AccessToken); err != nil {
			return err
		}
		if err := lifecycle.Guard(rec.Status, "record_monitoring", lifecycle.StatusInProgress); err != nil {
			return err
		}
		if rec.Monitoring == nil {
			rec.Monitoring = map[string]int{}
		}
		rec.Monitoring[kind] += count
		c.touch()
		return nil
	})
	if err != nil {
		return
	}
	counters = rec.Monitoring
	return
}

// CandidateView returns the candidate-visible part of the record after the
// lazy expiry check.
func (g *AccessGateway) CandidateView(ctx context.Context, creds CandidateCredentials) (CandidateView, error) {
	rec, err := g.read(ctx, creds.InterviewID)
	if err != nil {
		return CandidateView{}, err
	}
	if err := verifyToken(rec, creds.AccessToken); err != nil {
		return CandidateView{}, err
	}
	return candidateView(rec), nil
}

func snapshot(report readiness.Report, c *change) *Precheck {
	return &Precheck{
		Status:     report.Status(),
		Checks:     append([]readiness.Check(nil), report.Checks...),
		Attested:   report.Attestation.CompletedCount(),
		CanProceed: report.CanProceed(),
		RecordedAt: c.now,
	}
}

func candidateView(rec Interview) CandidateView {
	return CandidateView{
		InterviewID:     rec.ID,
		Status:          rec.Status,
		Mode:            rec.Config.Mode,
		DurationMinutes: rec.Config.DurationMinutes,
		QuestionCount:   rec.Config.QuestionCount,
		ScheduledAt:     cloneTime(rec.Window.ScheduledAt),
		ExpiresAt:       cloneTime(rec.Window.ExpiresAt),
		Timezone:        rec.Window.Timezone,
		Consumed:        rec.Access.Consumed,
		Precheck:        rec.Precheck,
	}
}
