package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is matched by every rejected transition.
	ErrInvalidTransition = errors.New("lifecycle: invalid transition")
	// ErrAlreadyTerminal is matched when the rejected record is already terminal.
	ErrAlreadyTerminal = errors.New("lifecycle: interview already terminal")
)

// Transition names an edge of the lifecycle graph.
type Transition string

const (
	TransitionGenerateQuestions Transition = "generate_questions"
	TransitionMarkReady         Transition = "mark_ready"
	TransitionSchedule          Transition = "schedule"
	TransitionStart             Transition = "start"
	TransitionComplete          Transition = "complete"
	TransitionCancel            Transition = "cancel"
	TransitionExpire            Transition = "expire"
)

type edge struct {
	sources []Status
	target  Status
}

var table = map[Transition]edge{
	TransitionGenerateQuestions: {sources: []Status{StatusSetup}, target: StatusQuestionsGenerated},
	TransitionMarkReady:         {sources: []Status{StatusQuestionsGenerated}, target: StatusReady},
	TransitionSchedule:          {sources: []Status{StatusReady}, target: StatusScheduled},
	TransitionStart:             {sources: []Status{StatusScheduled, StatusReady}, target: StatusInProgress},
	TransitionComplete:          {sources: []Status{StatusInProgress}, target: StatusCompleted},
	TransitionCancel: {
		sources: []Status{StatusScheduled, StatusReady, StatusQuestionsGenerated, StatusSetup},
		target:  StatusCancelled,
	},
	TransitionExpire: {sources: []Status{StatusScheduled, StatusReady}, target: StatusExpired},
}

// Target returns the status a transition leads to.
func (t Transition) Target() (Status, bool) {
	e, ok := table[t]
	if !ok {
		return "", false
	}
	return e.target, true
}

// TransitionError describes a rejected transition. It matches
// ErrInvalidTransition, and ErrAlreadyTerminal when From is terminal.
type TransitionError struct {
	From       Status
	To         Status
	Transition Transition
}

func (e *TransitionError) Error() string {
	to := string(e.To)
	if to == "" {
		to = "?"
	}
	return fmt.Sprintf("lifecycle: invalid transition %s: %s -> %s", e.Transition, e.From, to)
}

// Is supports errors.Is against the package sentinels.
func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return true
	case ErrAlreadyTerminal:
		return e.From.Terminal()
	}
	return false
}

// Outcome is the result of resolving a transition.
type Outcome struct {
	From    Status
	To      Status
	Changed bool
}

// Next resolves transition t from the current status. Validity depends only
// on (from, t). A transition whose target already equals from is an
// idempotent no-op (Changed == false); any other edge outside the table is a
// *TransitionError and the caller must leave the record untouched.
func Next(from Status, t Transition) (Outcome, error) {
	e, ok := table[t]
	if !ok || !from.Valid() {
		return Outcome{}, &TransitionError{From: from, Transition: t}
	}
	if from == e.target {
		return Outcome{From: from, To: from}, nil
	}
	for _, source := range e.sources {
		if source == from {
			return Outcome{From: from, To: e.target, Changed: true}, nil
		}
	}
	return Outcome{}, &TransitionError{From: from, To: e.target, Transition: t}
}

// Allowed lists the transitions that would change the status of a record in from.
func Allowed(from Status) []Transition {
	order := []Transition{
		TransitionGenerateQuestions,
		TransitionMarkReady,
		TransitionSchedule,
		TransitionStart,
		TransitionComplete,
		TransitionCancel,
		TransitionExpire,
	}
	out := make([]Transition, 0, 3)
	for _, t := range order {
		if outcome, err := Next(from, t); err == nil && outcome.Changed {
			out = append(out, t)
		}
	}
	return out
}

// Adjacent reports whether from -> to is an edge of the lifecycle graph.
func Adjacent(from, to Status) bool {
	for _, e := range table {
		if e.target != to {
			continue
		}
		for _, source := range e.sources {
			if source == from {
				return true
			}
		}
	}
	return false
}

// Guard rejects an operation that is not a lifecycle edge (an edit, an
// invite, a decision) when the record is not in one of the allowed statuses.
// The error is a *TransitionError named after the operation.
func Guard(from Status, operation string, allowed ...Status) error {
	for _, status := range allowed {
		if status == from {
			return nil
		}
	}
	return &TransitionError{From: from, To: from, Transition: Transition(operation)}
}

// EditableStatuses lists the statuses in which configuration and scheduling
// may still change.
func EditableStatuses() []Status {
	return []Status{StatusSetup, StatusQuestionsGenerated, StatusReady, StatusScheduled}
}
