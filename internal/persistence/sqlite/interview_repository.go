package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/interview-engine/internal/persistence"
)

var _ persistence.InterviewRepository = (*Storage)(nil)

var interviewColumnNames = []string{
	"id", "job_id", "candidate_id", "created_by", "status", "version",
	"question_count", "duration_minutes", "interview_mode", "questions",
	"approved_by", "approved_at", "scheduled_at", "expires_at", "timezone",
	"token_hash", "link", "consumed", "consumed_at", "issued_at",
	"precheck", "monitoring", "decision", "cancel_reason",
	"started_at", "completed_at", "ended_at", "created_at", "updated_at",
}

var (
	interviewColumns = strings.Join(interviewColumnNames, ", ")
	insertInterview  = `INSERT INTO interviews (` + interviewColumns + `) VALUES (?` +
		strings.Repeat(", ?", len(interviewColumnNames)-1) + `)`
	updateInterview = func() string {
		assignments := make([]string, 0, len(interviewColumnNames)-1)
		for _, column := range interviewColumnNames[1:] {
			assignments = append(assignments, column+" = ?")
		}
		return `UPDATE interviews SET ` + strings.Join(assignments, ", ") + ` WHERE id = ? AND version = ?`
	}()
)

// CreateInterview inserts a new interview record.
func (s *Storage) CreateInterview(ctx context.Context, interview persistence.Interview) error {
	if interview.ID == "" {
		return persistence.ErrConstraintViolation
	}
	row, err := encodeInterview(interview)
	if err != nil {
		return err
	}

	return s.retry.WithRetry(ctx, func() error {
		_, err := s.pool.DB().ExecContext(ctx, insertInterview, row...)
		return err
	})
}

// GetInterview retrieves an interview by ID.
func (s *Storage) GetInterview(ctx context.Context, id string) (persistence.Interview, error) {
	if id == "" {
		return persistence.Interview{}, persistence.ErrNotFound
	}
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = ?`
	interview, err := scanInterview(s.pool.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Interview{}, s.mapper.MapError(err)
	}
	return interview, nil
}

// ListInterviews returns interviews matching filter, newest first.
func (s *Storage) ListInterviews(ctx context.Context, filter persistence.InterviewFilter) ([]persistence.Interview, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.CreatedBy != "" {
		clauses = append(clauses, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.CandidateID != "" {
		clauses = append(clauses, "candidate_id = ?")
		args = append(args, filter.CandidateID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + interviewColumns + ` FROM interviews`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	interviews := make([]persistence.Interview, 0)
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, interview)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return interviews, nil
}

// UpdateInterview performs a version-checked write and appends history rows
// in the same transaction.
func (s *Storage) UpdateInterview(ctx context.Context, interview persistence.Interview, history ...persistence.Transition) error {
	if interview.ID == "" {
		return persistence.ErrNotFound
	}
	expected := interview.Version
	interview.Version = expected + 1
	row, err := encodeInterview(interview)
	if err != nil {
		return err
	}

	args := make([]any, 0, len(row)+1)
	args = append(args, row[1:]...)
	args = append(args, interview.ID, expected)

	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			result, err := tx.ExecContext(ctx, updateInterview, args...)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("sqlite: rows affected: %w", err)
			}
			if affected == 0 {
				var exists int
				err := tx.QueryRowContext(ctx, `SELECT 1 FROM interviews WHERE id = ?`, interview.ID).Scan(&exists)
				if errors.Is(err, sql.ErrNoRows) {
					return persistence.ErrNotFound
				}
				if err != nil {
					return err
				}
				return persistence.ErrVersionConflict
			}
			for _, entry := range history {
				if err := insertTransition(ctx, tx, entry); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// ListTransitions returns the history of an interview in commit order.
func (s *Storage) ListTransitions(ctx context.Context, interviewID string) ([]persistence.Transition, error) {
	const query = `SELECT id, interview_id, transition, from_status, to_status, actor, reason, occurred_at
		FROM interview_transitions WHERE interview_id = ? ORDER BY rowid ASC`
	rows, err := s.pool.DB().QueryContext(ctx, query, interviewID)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	transitions := make([]persistence.Transition, 0)
	for rows.Next() {
		var (
			t          persistence.Transition
			occurredAt string
		)
		if err := rows.Scan(&t.ID, &t.InterviewID, &t.Transition, &t.FromStatus, &t.ToStatus, &t.Actor, &t.Reason, &occurredAt); err != nil {
			return nil, err
		}
		if t.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return transitions, nil
}

func insertTransition(ctx context.Context, tx *sql.Tx, t persistence.Transition) error {
	const insert = `INSERT INTO interview_transitions (id, interview_id, transition, from_status, to_status, actor, reason, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, insert, t.ID, t.InterviewID, t.Transition, t.FromStatus, t.ToStatus, t.Actor, t.Reason, formatTime(t.OccurredAt))
	return err
}

// encodeInterview returns the column values in interviewColumns order.
func encodeInterview(i persistence.Interview) ([]any, error) {
	questions := i.Questions
	if questions == nil {
		questions = []string{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode questions: %w", err)
	}
	monitoring := i.Monitoring
	if monitoring == nil {
		monitoring = map[string]int{}
	}
	monitoringJSON, err := json.Marshal(monitoring)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode monitoring: %w", err)
	}
	precheck, err := nullJSON(i.Precheck)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode precheck: %w", err)
	}
	decision, err := nullJSON(i.Decision)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode decision: %w", err)
	}

	return []any{
		i.ID, i.JobID, i.CandidateID, i.CreatedBy, i.Status, i.Version,
		i.QuestionCount, i.DurationMinutes, i.InterviewMode, string(questionsJSON),
		nullString(i.ApprovedBy), nullTime(i.ApprovedAt), nullTime(i.ScheduledAt), nullTime(i.ExpiresAt), i.Timezone,
		nullString(i.TokenHash), nullString(i.Link), i.Consumed, nullTime(i.ConsumedAt), nullTime(i.IssuedAt),
		precheck, string(monitoringJSON), decision, nullString(i.CancelReason),
		nullTime(i.StartedAt), nullTime(i.CompletedAt), nullTime(i.EndedAt), formatTime(i.CreatedAt), formatTime(i.UpdatedAt),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(scanner rowScanner) (persistence.Interview, error) {
	var (
		i                                           persistence.Interview
		questions, monitoring, createdAt, updatedAt string
		approvedBy, tokenHash, link, cancelReason   sql.NullString
		precheck, decision                          sql.NullString
		approvedAt, scheduledAt, expiresAt          sql.NullString
		consumedAt, issuedAt, startedAt             sql.NullString
		completedAt, endedAt                        sql.NullString
	)
	err := scanner.Scan(
		&i.ID, &i.JobID, &i.CandidateID, &i.CreatedBy, &i.Status, &i.Version,
		&i.QuestionCount, &i.DurationMinutes, &i.InterviewMode, &questions,
		&approvedBy, &approvedAt, &scheduledAt, &expiresAt, &i.Timezone,
		&tokenHash, &link, &i.Consumed, &consumedAt, &issuedAt,
		&precheck, &monitoring, &decision, &cancelReason,
		&startedAt, &completedAt, &endedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Interview{}, err
	}

	if err := json.Unmarshal([]byte(questions), &i.Questions); err != nil {
		return persistence.Interview{}, fmt.Errorf("sqlite: decode questions: %w", err)
	}
	if err := json.Unmarshal([]byte(monitoring), &i.Monitoring); err != nil {
		return persistence.Interview{}, fmt.Errorf("sqlite: decode monitoring: %w", err)
	}
	if precheck.Valid {
		i.Precheck = &persistence.Precheck{}
		if err := json.Unmarshal([]byte(precheck.String), i.Precheck); err != nil {
			return persistence.Interview{}, fmt.Errorf("sqlite: decode precheck: %w", err)
		}
	}
	if decision.Valid {
		i.Decision = &persistence.Decision{}
		if err := json.Unmarshal([]byte(decision.String), i.Decision); err != nil {
			return persistence.Interview{}, fmt.Errorf("sqlite: decode decision: %w", err)
		}
	}

	i.ApprovedBy = stringPtr(approvedBy)
	i.TokenHash = stringPtr(tokenHash)
	i.Link = stringPtr(link)
	i.CancelReason = stringPtr(cancelReason)

	for _, field := range []struct {
		raw sql.NullString
		dst **time.Time
	}{
		{approvedAt, &i.ApprovedAt},
		{scheduledAt, &i.ScheduledAt},
		{expiresAt, &i.ExpiresAt},
		{consumedAt, &i.ConsumedAt},
		{issuedAt, &i.IssuedAt},
		{startedAt, &i.StartedAt},
		{completedAt, &i.CompletedAt},
		{endedAt, &i.EndedAt},
	} {
		if !field.raw.Valid {
			continue
		}
		parsed, err := parseTime(field.raw.String)
		if err != nil {
			return persistence.Interview{}, err
		}
		*field.dst = &parsed
	}

	if i.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Interview{}, err
	}
	if i.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Interview{}, err
	}
	return i, nil
}

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", value, err)
	}
	return t.UTC(), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullJSON[T any](value *T) (any, error) {
	if value == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
