// Package atom defines the core governance entity: the intent atom, an
// irreducible falsifiable behavioral statement with a lifecycle, a quality
// score, and a supersession lineage.
package atom

import (
	"time"
)

// Atom is the unit of governance.
type Atom struct {
	ID          string   `db:"id" json:"id" yaml:"id"`                            // Opaque stable UUID
	HumanID     string   `db:"human_id" json:"human_id" yaml:"human_id"`          // Operator-facing IA-NNN
	Description string   `db:"description" json:"description" yaml:"description"` // The behavioral statement
	Category    Category `db:"category" json:"category" yaml:"category"`
	Status      Status   `db:"status" json:"status" yaml:"status"`

	// QualityScore is the 0-100 atomicity score, nil when never scored.
	QualityScore *int `db:"quality_score" json:"quality_score,omitempty" yaml:"quality_score,omitempty"`

	// Intent lineage. All editions of conceptually the same requirement share
	// an IntentIdentity; IntentVersion increases with each supersession.
	IntentIdentity string  `db:"intent_identity" json:"intent_identity,omitempty" yaml:"intent_identity,omitempty"`
	IntentVersion  int     `db:"intent_version" json:"intent_version" yaml:"intent_version"`
	ParentIntent   *string `db:"parent_intent" json:"parent_intent,omitempty" yaml:"parent_intent,omitempty"`

	// SupersededBy references the replacing atom. Set exactly when
	// Status == StatusSuperseded.
	SupersededBy *string `db:"superseded_by" json:"superseded_by,omitempty" yaml:"superseded_by,omitempty"`

	Tags                   []string          `db:"tags" json:"tags" yaml:"tags"`
	ObservableOutcomes     []OutcomeClause   `db:"observable_outcomes" json:"observable_outcomes" yaml:"observable_outcomes"`
	FalsifiabilityCriteria []CriterionClause `db:"falsifiability_criteria" json:"falsifiability_criteria" yaml:"falsifiability_criteria"`
	RefinementHistory      []Refinement      `db:"refinement_history" json:"refinement_history" yaml:"refinement_history"`

	// ChangesetID is set while the atom belongs to a changeset; promotion
	// into the main governed set clears it.
	ChangesetID *string    `db:"changeset_id" json:"changeset_id,omitempty" yaml:"changeset_id,omitempty"`
	CommittedAt *time.Time `db:"committed_at" json:"committed_at,omitempty" yaml:"committed_at,omitempty"`

	CreatedAt  time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
	RowVersion int       `db:"row_version" json:"-" yaml:"-"` // Optimistic concurrency token
}

// OutcomeClause describes one externally observable effect of the behavior.
type OutcomeClause struct {
	Description string `json:"description" yaml:"description"`
	Signal      string `json:"signal,omitempty" yaml:"signal,omitempty"` // Where the effect surfaces: "ui", "api", "log", ...
}

// CriterionClause is a falsifiability criterion: the concrete check that
// would prove the behavior absent or broken.
type CriterionClause struct {
	Description string `json:"description" yaml:"description"`
	Measurable  bool   `json:"measurable" yaml:"measurable"`
}

// RefinementSource identifies who authored a description refinement.
type RefinementSource string

const (
	SourceUser   RefinementSource = "user"
	SourceAI     RefinementSource = "ai"
	SourceSystem RefinementSource = "system"
)

// Valid returns true if the source is a member of the closed set.
func (s RefinementSource) Valid() bool {
	switch s {
	case SourceUser, SourceAI, SourceSystem:
		return true
	default:
		return false
	}
}

// Refinement is one entry in an atom's description history.
type Refinement struct {
	Description string           `json:"description" yaml:"description"`
	Source      RefinementSource `json:"source" yaml:"source"`
	RecordedAt  time.Time        `json:"recorded_at" yaml:"recorded_at"`
}

// Mutable reports whether the atom's content fields may still change.
func (a *Atom) Mutable() bool {
	return a.Status.Mutable()
}

// HasTag reports whether the atom carries the given tag.
func (a *Atom) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EffectiveScore returns the quality score with nil treated as zero, the
// convention the quality gate applies.
func (a *Atom) EffectiveScore() int {
	if a.QualityScore == nil {
		return 0
	}
	return *a.QualityScore
}
