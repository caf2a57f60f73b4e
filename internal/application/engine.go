package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/interview-engine/internal/events"
	"github.com/example/interview-engine/internal/lifecycle"
	"github.com/example/interview-engine/internal/lock"
	"github.com/example/interview-engine/internal/scheduler"
)

// InterviewRepository captures the persistence operations needed by the services.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview Interview) (Interview, error)
	GetInterview(ctx context.Context, id string) (Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]Interview, error)
	// SaveInterview writes interview if the stored version equals
	// interview.Version and appends history atomically. It returns the stored
	// record (with the new version) or ErrConflict when another writer won.
	SaveInterview(ctx context.Context, interview Interview, history []TransitionRecord) (Interview, error)
	ListTransitions(ctx context.Context, interviewID string) ([]TransitionRecord, error)
}

var tracer = otel.Tracer("github.com/example/interview-engine/internal/application")

// Locker serialises writers of one record. Implementations range from an
// in-process keyed mutex to a Redis lease shared by every instance.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Metrics receives counters for committed transitions and admission attempts.
type Metrics interface {
	ObserveTransition(from, to lifecycle.Status)
	ObserveAdmission(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(lifecycle.Status, lifecycle.Status) {}
func (noopMetrics) ObserveAdmission(string)                              {}

// Option configures the interview services.
type Option func(*engine)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *engine) { e.logger = defaultLogger(logger) }
}

// WithLocker sets the per-record lock.
func WithLocker(locker Locker) Option {
	return func(e *engine) {
		if locker != nil {
			e.locker = locker
		}
	}
}

// WithPublisher sets the event publisher used after commits.
func WithPublisher(publisher events.Publisher) Option {
	return func(e *engine) {
		if publisher != nil {
			e.publisher = publisher
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics Metrics) Option {
	return func(e *engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithPublicBaseURL sets the base of candidate links.
func WithPublicBaseURL(base string) Option {
	return func(e *engine) { e.publicBaseURL = strings.TrimRight(base, "/") }
}

// WithDefaultExpiryWindow sets how long links stay valid when no explicit
// deadline is given.
func WithDefaultExpiryWindow(window time.Duration) Option {
	return func(e *engine) {
		if window > 0 {
			e.expiryWindow = window
		}
	}
}

// WithTokenParams tunes argon2id hashing of access tokens.
func WithTokenParams(params Argon2idParams) Option {
	return func(e *engine) { e.tokenParams = params }
}

// WithMaxAttempts bounds retries after a lost version race.
func WithMaxAttempts(attempts int) Option {
	return func(e *engine) {
		if attempts > 0 {
			e.maxAttempts = attempts
		}
	}
}

// DefaultExpiryWindow is the link lifetime when none is configured.
const DefaultExpiryWindow = 72 * time.Hour

type engine struct {
	repo          InterviewRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
	locker        Locker
	publisher     events.Publisher
	metrics       Metrics
	publicBaseURL string
	expiryWindow  time.Duration
	tokenParams   Argon2idParams
	maxAttempts   int
	newToken      func() (string, error)
}

func newEngine(repo InterviewRepository, idGenerator func() string, now func() time.Time, opts ...Option) *engine {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	e := &engine{
		repo:         repo,
		idGenerator:  idGenerator,
		now:          now,
		logger:       slog.Default(),
		locker:       lock.NewLocal(),
		publisher:    events.Noop{},
		metrics:      noopMetrics{},
		expiryWindow: DefaultExpiryWindow,
		tokenParams:  DefaultArgon2idParams,
		maxAttempts:  3,
		newToken:     NewAccessToken,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// change accumulates the effects of one mutation attempt.
type change struct {
	engine  *engine
	now     time.Time
	actor   string
	dirty   bool
	history []TransitionRecord
	events  []events.Event
}

// apply dispatches t through the lifecycle table and records the edge.
func (c *change) apply(rec *Interview, t lifecycle.Transition, reason string) (lifecycle.Outcome, error) {
	outcome, err := lifecycle.Next(rec.Status, t)
	if err != nil {
		return outcome, err
	}
	if !outcome.Changed {
		return outcome, nil
	}
	actor := c.actor
	if t == lifecycle.TransitionExpire {
		actor = SystemActor
	}
	rec.Status = outcome.To
	c.dirty = true
	c.history = append(c.history, TransitionRecord{
		ID:          c.engine.idGenerator(),
		InterviewID: rec.ID,
		Transition:  t,
		From:        outcome.From,
		To:          outcome.To,
		Actor:       actor,
		Reason:      reason,
		OccurredAt:  c.now,
	})
	return outcome, nil
}

func (c *change) touch() {
	c.dirty = true
}

func (c *change) emit(event events.Event) {
	c.events = append(c.events, event)
}

// expireIfDue performs the lazy deadline check.
func (c *change) expireIfDue(rec *Interview) bool {
	if rec.Status != lifecycle.StatusReady && rec.Status != lifecycle.StatusScheduled {
		return false
	}
	if !scheduler.IsExpired(rec.Window.ExpiresAt, c.now) {
		return false
	}
	_, err := c.apply(rec, lifecycle.TransitionExpire, "deadline passed")
	return err == nil
}

type mutateFunc func(rec *Interview, c *change) error

// mutate runs fn against the current record under the per-record lock. The
// lazy expiry check runs first and is persisted even when fn rejects the
// call; any other effect of a failed fn is discarded. A lost version race
// re-reads and re-runs fn.
func (e *engine) mutate(ctx context.Context, id, actor string, fn mutateFunc) (rec Interview, err error) {
	if e.repo == nil {
		return Interview{}, fmt.Errorf("interview repository not configured")
	}
	ctx, span := tracer.Start(ctx, "interview.mutate", trace.WithAttributes(
		attribute.String("interview.id", id),
		attribute.String("interview.actor", actor),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, ErrorKind(err))
		} else {
			span.SetAttributes(attribute.String("interview.status", string(rec.Status)))
		}
		span.End()
	}()

	release, err := e.locker.Acquire(ctx, lockKey(id))
	if err != nil {
		return Interview{}, fmt.Errorf("acquire record lock: %w", err)
	}
	defer release()

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		current, err := e.repo.GetInterview(ctx, id)
		if err != nil {
			return Interview{}, err
		}

		c := &change{engine: e, now: e.now(), actor: actor}
		expired := c.expireIfDue(&current)
		base := current.clone()
		baseHistory := len(c.history)

		next := current
		fnErr := fn(&next, c)
		if fnErr != nil {
			if !expired {
				return Interview{}, fnErr
			}
			next, c.history, c.events = base, c.history[:baseHistory], nil
		}
		if !c.dirty {
			return next, fnErr
		}

		next.UpdatedAt = c.now
		saved, err := e.repo.SaveInterview(ctx, next, c.history)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return Interview{}, err
		}
		e.afterCommit(ctx, saved, c)
		return saved, fnErr
	}
	return Interview{}, ErrConflict
}

func (e *engine) afterCommit(ctx context.Context, rec Interview, c *change) {
	for _, entry := range c.history {
		e.metrics.ObserveTransition(entry.From, entry.To)
		e.publish(ctx, events.Event{
			ID:          e.idGenerator(),
			Type:        events.TypeStatusChanged,
			InterviewID: rec.ID,
			CandidateID: rec.CandidateID,
			Transition:  string(entry.Transition),
			From:        string(entry.From),
			To:          string(entry.To),
			Actor:       entry.Actor,
			Reason:      entry.Reason,
			OccurredAt:  entry.OccurredAt,
		})
	}
	for _, event := range c.events {
		e.publish(ctx, event)
	}
}

func (e *engine) publish(ctx context.Context, event events.Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.Type,
			"interview_id", event.InterviewID,
			"error", err,
		)
	}
}

// read returns a record after applying (and persisting) the lazy expiry check.
func (e *engine) read(ctx context.Context, id string) (Interview, error) {
	return e.mutate(ctx, id, SystemActor, func(*Interview, *change) error { return nil })
}

// issueToken replaces the access token of rec.
func (e *engine) issueToken(rec *Interview, c *change) (AccessGrant, error) {
	token, err := e.newToken()
	if err != nil {
		return AccessGrant{}, err
	}
	hash, err := HashAccessToken(token, e.tokenParams)
	if err != nil {
		return AccessGrant{}, fmt.Errorf("hash access token: %w", err)
	}
	rec.Access.TokenHash = hash
	rec.Access.Link = e.baseLink(rec.ID)
	rec.Access.Consumed = false
	rec.Access.ConsumedAt = nil
	rec.Access.IssuedAt = timePtr(c.now)
	c.touch()

	return AccessGrant{
		InterviewID: rec.ID,
		Token:       token,
		Link:        e.candidateLink(rec.ID, token),
		ExpiresAt:   cloneTime(rec.Window.ExpiresAt),
	}, nil
}

func (e *engine) baseLink(id string) string {
	return e.publicBaseURL + "/interview/" + url.PathEscape(id)
}

func (e *engine) candidateLink(id, token string) string {
	return e.baseLink(id) + "?token=" + url.QueryEscape(token)
}

func lockKey(id string) string {
	return "interview:" + id
}
