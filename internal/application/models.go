package application

import (
	"time"

	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/readiness"
	"github.com/example/interview-engine/internal/scheduler"
)

// Principal represents the authenticated recruiter invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Actors recorded on transitions that no recruiter performed.
const (
	SystemActor    = "system"
	CandidateActor = "candidate"
)

// InterviewMode selects the medium of the interview.
type InterviewMode string

const (
	ModeVideo InterviewMode = "video"
	ModeAudio InterviewMode = "audio"
	ModeChat  InterviewMode = "chat"
)

// Valid reports whether m is a supported mode.
func (m InterviewMode) Valid() bool {
	switch m {
	case ModeVideo, ModeAudio, ModeChat:
		return true
	}
	return false
}

// Config bounds.
const (
	MinQuestionCount   = 1
	MaxQuestionCount   = 50
	MinDurationMinutes = 5
	MaxDurationMinutes = 240
)

// InterviewConfig is set at creation and frozen once the interview starts.
type InterviewConfig struct {
	QuestionCount   int
	DurationMinutes int
	Mode            InterviewMode
}

// AccessState holds the single-use admission token. Only its hash is stored.
type AccessState struct {
	TokenHash  string
	Link       string
	Consumed   bool
	ConsumedAt *time.Time
	IssuedAt   *time.Time
}

// Precheck is the stored readiness snapshot. It is derived data and never
// authorizes admission on its own.
type Precheck struct {
	Status     readiness.PrecheckStatus
	Checks     []readiness.Check
	Attested   int
	CanProceed bool
	RecordedAt time.Time
}

// DecisionStatus is the reviewer outcome of a completed interview.
type DecisionStatus string

const (
	DecisionShortlisted DecisionStatus = "shortlisted"
	DecisionRejected    DecisionStatus = "rejected"
	DecisionOnHold      DecisionStatus = "on_hold"
)

// Valid reports whether d is a known decision.
func (d DecisionStatus) Valid() bool {
	switch d {
	case DecisionShortlisted, DecisionRejected, DecisionOnHold:
		return true
	}
	return false
}

// Decision records the reviewer outcome.
type Decision struct {
	Status    DecisionStatus
	DecidedBy string
	DecidedAt time.Time
	Note      string
}

// Interview is the authoritative interview record.
type Interview struct {
	ID           string
	JobID        string
	CandidateID  string
	CreatedBy    string
	Status       lifecycle.Status
	Version      int64
	Config       InterviewConfig
	Questions    []string
	ApprovedBy   string
	ApprovedAt   *time.Time
	Window       scheduler.Window
	Access       AccessState
	Precheck     *Precheck
	Monitoring   map[string]int
	Decision     *Decision
	CancelReason string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	EndedAt      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// clone returns a deep copy so a failed mutation never leaks into the
// record that gets persisted.
func (i Interview) clone() Interview {
	out := i
	out.Questions = append([]string(nil), i.Questions...)
	out.ApprovedAt = cloneTime(i.ApprovedAt)
	out.Window.ScheduledAt = cloneTime(i.Window.ScheduledAt)
	out.Window.ExpiresAt = cloneTime(i.Window.ExpiresAt)
	out.Access.ConsumedAt = cloneTime(i.Access.ConsumedAt)
	out.Access.IssuedAt = cloneTime(i.Access.IssuedAt)
	if i.Precheck != nil {
		precheck := *i.Precheck
		precheck.Checks = append([]readiness.Check(nil), i.Precheck.Checks...)
		out.Precheck = &precheck
	}
	if i.Monitoring != nil {
		out.Monitoring = make(map[string]int, len(i.Monitoring))
		for k, v := range i.Monitoring {
			out.Monitoring[k] = v
		}
	}
	if i.Decision != nil {
		decision := *i.Decision
		out.Decision = &decision
	}
	out.StartedAt = cloneTime(i.StartedAt)
	out.CompletedAt = cloneTime(i.CompletedAt)
	out.EndedAt = cloneTime(i.EndedAt)
	return out
}

// TransitionRecord is one committed status change.
type TransitionRecord struct {
	ID          string
	InterviewID string
	Transition  lifecycle.Transition
	From        lifecycle.Status
	To          lifecycle.Status
	Actor       string
	Reason      string
	OccurredAt  time.Time
}

// InterviewFilter narrows ListInterviews.
type InterviewFilter struct {
	CreatedBy   string
	CandidateID string
	Statuses    []lifecycle.Status
}

// CreateInterviewParams wraps the data required to create an interview.
type CreateInterviewParams struct {
	Principal   Principal
	JobID       string
	CandidateID string
	Config      InterviewConfig
	// Window optionally schedules at creation time; it is stored and applied
	// when the interview is scheduled.
	Window *scheduler.Window
}

// UpdateConfigParams wraps a configuration edit.
type UpdateConfigParams struct {
	Principal   Principal
	InterviewID string
	Config      InterviewConfig
}

// GenerateQuestionsParams carries the generated question set.
type GenerateQuestionsParams struct {
	Principal   Principal
	InterviewID string
	Questions   []string
}

// ScheduleParams wraps a schedule or reschedule request.
type ScheduleParams struct {
	Principal   Principal
	InterviewID string
	Window      scheduler.Window
}

// CancelParams wraps a cancellation.
type CancelParams struct {
	Principal   Principal
	InterviewID string
	Reason      string
}

// DecisionParams wraps a reviewer decision.
type DecisionParams struct {
	Principal   Principal
	InterviewID string
	Status      DecisionStatus
	Note        string
}

// AccessGrant is returned once when a token is issued. Token is the only
// copy of the raw secret.
type AccessGrant struct {
	InterviewID string
	Token       string
	Link        string
	ExpiresAt   *time.Time
}

// CandidateCredentials authenticate candidate-side calls.
type CandidateCredentials struct {
	InterviewID string
	AccessToken string
}

// PrecheckParams carries a readiness report from the candidate's device.
type PrecheckParams struct {
	CandidateCredentials
	Report readiness.Report
}

// AdmitParams is the Access Gateway input. ReadinessPassed is the result of
// the readiness gate on the candidate's device; Precheck, when present, is
// stored alongside the admission.
type AdmitParams struct {
	CandidateCredentials
	ReadinessPassed bool
	Precheck        *readiness.Report
}

// MonitoringParams records one integrity event.
type MonitoringParams struct {
	CandidateCredentials
	Kind  string
	Count int
}

// CompleteParams marks a submission as received.
type CompleteParams struct {
	Principal   Principal
	InterviewID string
}

// CandidateView is the subset of the record a candidate may read.
type CandidateView struct {
	InterviewID     string
	Status          lifecycle.Status
	Mode            InterviewMode
	DurationMinutes int
	QuestionCount   int
	ScheduledAt     *time.Time
	ExpiresAt       *time.Time
	Timezone        string
	Consumed        bool
	Precheck        *Precheck
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
