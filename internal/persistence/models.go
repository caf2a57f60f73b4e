package persistence

import "time"

// Interview is the stored form of an interview record. Status holds the
// canonical lowercase lifecycle value; Version increases by one per write.
type Interview struct {
	ID              string
	JobID           string
	CandidateID     string
	CreatedBy       string
	Status          string
	Version         int64
	QuestionCount   int
	DurationMinutes int
	InterviewMode   string
	Questions       []string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	ScheduledAt     *time.Time
	ExpiresAt       *time.Time
	Timezone        string
	TokenHash       *string
	Link            *string
	Consumed        bool
	ConsumedAt      *time.Time
	IssuedAt        *time.Time
	Precheck        *Precheck
	Monitoring      map[string]int
	Decision        *Decision
	CancelReason    *string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	EndedAt         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Precheck is the stored readiness snapshot.
type Precheck struct {
	Status     string          `json:"status"`
	Checks     []PrecheckCheck `json:"checks"`
	Attested   int             `json:"attested"`
	CanProceed bool            `json:"can_proceed"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// PrecheckCheck is one stored device or network check.
type PrecheckCheck struct {
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// Decision is the recruiter's outcome for a completed interview.
type Decision struct {
	Status    string    `json:"status"`
	DecidedBy string    `json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`
	Note      string    `json:"note,omitempty"`
}

// Transition is an append-only history row for a committed status change.
type Transition struct {
	ID          string
	InterviewID string
	Transition  string
	FromStatus  string
	ToStatus    string
	Actor       string
	Reason      string
	OccurredAt  time.Time
}
