package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/readiness"
	"github.com/example/interview-engine/internal/scheduler"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadRequestBody
		}
		return errors.Join(errBadRequestBody, err)
	}
	return nil
}

type configPayload struct {
	QuestionCount   int    `json:"question_count"`
	DurationMinutes int    `json:"duration_minutes"`
	Mode            string `json:"mode"`
}

func (p configPayload) toModel() application.InterviewConfig {
	return application.InterviewConfig{
		QuestionCount:   p.QuestionCount,
		DurationMinutes: p.DurationMinutes,
		Mode:            application.InterviewMode(p.Mode),
	}
}

type windowPayload struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
}

func (p windowPayload) toModel() scheduler.Window {
	return scheduler.Window{ScheduledAt: p.ScheduledAt, ExpiresAt: p.ExpiresAt, Timezone: p.Timezone}
}

type createInterviewRequest struct {
	JobID       string         `json:"job_id"`
	CandidateID string         `json:"candidate_id"`
	Config      configPayload  `json:"config"`
	Window      *windowPayload `json:"window,omitempty"`
}

type questionsRequest struct {
	Questions []string `json:"questions"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type decisionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type admitRequest struct {
	ReadinessPassed bool              `json:"readiness_passed"`
	Precheck        *readiness.Report `json:"precheck,omitempty"`
}

type monitoringRequest struct {
	Kind  string `json:"kind"`
	Count int    `json:"count,omitempty"`
}

type precheckResponse struct {
	Status     readiness.PrecheckStatus `json:"status"`
	Checks     []readiness.Check        `json:"checks"`
	Attested   int                      `json:"attested"`
	CanProceed bool                     `json:"can_proceed"`
	RecordedAt time.Time                `json:"recorded_at"`
}

func toPrecheckResponse(p *application.Precheck) *precheckResponse {
	if p == nil {
		return nil
	}
	return &precheckResponse{
		Status:     p.Status,
		Checks:     p.Checks,
		Attested:   p.Attested,
		CanProceed: p.CanProceed,
		RecordedAt: p.RecordedAt,
	}
}

type decisionResponse struct {
	Status    application.DecisionStatus `json:"status"`
	DecidedBy string                     `json:"decided_by"`
	DecidedAt time.Time                  `json:"decided_at"`
	Note      string                     `json:"note,omitempty"`
}

// interviewResponse never carries the token hash.
type interviewResponse struct {
	ID            string             `json:"id"`
	JobID         string             `json:"job_id"`
	CandidateID   string             `json:"candidate_id"`
	CreatedBy     string             `json:"created_by"`
	Status        lifecycle.Status   `json:"status"`
	Version       int64              `json:"version"`
	Config        configPayload      `json:"config"`
	Questions     []string           `json:"questions"`
	ApprovedBy    string             `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	Window        windowPayload      `json:"window"`
	Link          string             `json:"link,omitempty"`
	TokenConsumed bool               `json:"token_consumed"`
	ConsumedAt    *time.Time         `json:"consumed_at,omitempty"`
	Precheck      *precheckResponse  `json:"precheck,omitempty"`
	Monitoring    map[string]int     `json:"monitoring,omitempty"`
	Decision      *decisionResponse  `json:"decision,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	EndedAt       *time.Time         `json:"ended_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Allowed []lifecycle.Transition `json:"allowed_transitions"`
}

func toInterviewResponse(rec application.Interview) interviewResponse {
	resp := interviewResponse{
		ID:          rec.ID,
		JobID:       rec.JobID,
		CandidateID: rec.CandidateID,
		CreatedBy:   rec.CreatedBy,
		Status:      rec.Status,
		Version:     rec.Version,
		Config: configPayload{
			QuestionCount:   rec.Config.QuestionCount,
			DurationMinutes: rec.Config.DurationMinutes,
			Mode:            string(rec.Config.Mode),
		},
		Questions:     rec.Questions,
		ApprovedBy:    rec.ApprovedBy,
		ApprovedAt:    rec.ApprovedAt,
		Window:        windowPayload{ScheduledAt: rec.Window.ScheduledAt, ExpiresAt: rec.Window.ExpiresAt, Timezone: rec.Window.Timezone},
		Link:          rec.Access.Link,
		TokenConsumed: rec.Access.Consumed,
		ConsumedAt:    rec.Access.ConsumedAt,
		Precheck:      toPrecheckResponse(rec.Precheck),
		Monitoring:    rec.Monitoring,
		CancelReason:  rec.CancelReason,
		StartedAt:     rec.StartedAt,
		CompletedAt:   rec.CompletedAt,
		EndedAt:       rec.EndedAt,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		Allowed:       lifecycle.Allowed(rec.Status),
	}
	if resp.Questions == nil {
		resp.Questions = []string{}
	}
	if rec.Decision != nil {
		resp.Decision = &decisionResponse{
			Status:    rec.Decision.Status,
			DecidedBy: rec.Decision.DecidedBy,
			DecidedAt: rec.Decision.DecidedAt,
			Note:      rec.Decision.Note,
		}
	}
	return resp
}

type grantResponse struct {
	InterviewID string     `json:"interview_id"`
	AccessToken string     `json:"access_token"`
	Link        string     `json:"link"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toGrantResponse(grant application.AccessGrant) grantResponse {
	return grantResponse{
		InterviewID: grant.InterviewID,
		AccessToken: grant.Token,
		Link:        grant.Link,
		ExpiresAt:   grant.ExpiresAt,
	}
}

type transitionResponse struct {
	ID         string               `json:"id"`
	Transition lifecycle.Transition `json:"transition"`
	From       lifecycle.Status     `json:"from"`
	To         lifecycle.Status     `json:"to"`
	Actor      string               `json:"actor"`
	Reason     string               `json:"reason,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type candidateViewResponse struct {
	InterviewID     string                    `json:"interview_id"`
	Status          lifecycle.Status          `json:"status"`
	Mode            application.InterviewMode `json:"mode"`
	DurationMinutes int                       `json:"duration_minutes"`
	QuestionCount   int                       `json:"question_count"`
	ScheduledAt     *time.Time                `json:"scheduled_at,omitempty"`
	ExpiresAt       *time.Time                `json:"expires_at,omitempty"`
	Timezone        string                    `json:"timezone,omitempty"`
	Consumed        bool                      `json:"consumed"`
	Precheck        *precheckResponse         `json:"precheck,omitempty"`
}

func toCandidateViewResponse(v application.CandidateView) candidateViewResponse {
	return candidateViewResponse{
		InterviewID:     v.InterviewID,
		Status:          v.Status,
		Mode:            v.Mode,
		DurationMinutes: v.DurationMinutes,
		QuestionCount:   v.QuestionCount,
		ScheduledAt:     v.ScheduledAt,
		ExpiresAt:       v.ExpiresAt,
		Timezone:        v.Timezone,
		Consumed:        v.Consumed,
		Precheck:        toPrecheckResponse(v.Precheck),
	}
}
