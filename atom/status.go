package atom

import (
	"github.com/jasontalley/pact/errors"
)

// Status represents the lifecycle state of an atom. The set is closed:
// strings from outside the enumeration are rejected at parse time, and
// transitions go through CanTransitionTo rather than free comparisons.
type Status string

const (
	// StatusProposed is an atom created under an open changeset, awaiting
	// batch approval.
	StatusProposed Status = "proposed"

	// StatusDraft is an atom under direct iteration. Drafts are freely
	// mutable and may be deleted outright.
	StatusDraft Status = "draft"

	// StatusCommitted is a quality-gated atom in the main governed set.
	// Committed atoms are frozen and never leave the catalog.
	StatusCommitted Status = "committed"

	// StatusSuperseded is a committed atom replaced by a successor.
	// Terminal; SupersededBy records the replacement.
	StatusSuperseded Status = "superseded"

	// StatusAbandoned is a draft or proposed atom withdrawn without commit.
	// Terminal.
	StatusAbandoned Status = "abandoned"
)

// statusTransitions is the full lifecycle state machine. Absent entries are
// forbidden transitions.
var statusTransitions = map[Status]map[Status]bool{
	StatusProposed: {
		StatusCommitted: true, // changeset approval
		StatusDraft:     true, // convert to draft
		StatusAbandoned: true,
	},
	StatusDraft: {
		StatusCommitted: true, // quality-gated commit
		StatusAbandoned: true,
	},
	StatusCommitted: {
		StatusSuperseded: true,
	},
	StatusSuperseded: {},
	StatusAbandoned:  {},
}

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", errors.NewValidationf("invalid atom status: %q", s)
	}
	return status, nil
}

// String returns the status as its canonical string form.
func (s Status) String() string {
	return string(s)
}

// Valid returns true if the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusProposed, StatusDraft, StatusCommitted, StatusSuperseded, StatusAbandoned:
		return true
	default:
		return false
	}
}

// Mutable returns true while the atom's content fields may still change.
// Only draft and proposed atoms are mutable.
func (s Status) Mutable() bool {
	return s == StatusDraft || s == StatusProposed
}

// Terminal returns true for states with no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusSuperseded || s == StatusAbandoned
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	return statusTransitions[s][next]
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusProposed, StatusDraft, StatusCommitted, StatusSuperseded, StatusAbandoned}
}
