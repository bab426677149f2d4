package registry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// Supersede marks the original atom superseded by an existing successor.
// The original must be committed: drafts are updated or abandoned instead,
// and a superseded atom never moves again.
func (r *Registry) Supersede(ctx context.Context, id, successorID string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supersedable(a); err != nil {
		return nil, err
	}
	successor, err := r.resolve(ctx, successorID)
	if err != nil {
		return nil, err
	}
	if successor.ID == a.ID {
		return nil, errors.NewValidationf("atom %s cannot supersede itself", a.HumanID)
	}

	a.Status = atom.StatusSuperseded
	a.SupersededBy = &successor.ID
	a.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Infow("Superseded atom",
		"human_id", a.HumanID, "superseded_by", successor.HumanID)
	return a, nil
}

func supersedable(a *atom.Atom) error {
	if a.Status == atom.StatusSuperseded {
		return errors.NewStateConflictf("atom %s is already superseded", a.HumanID)
	}
	if a.Status == atom.StatusDraft {
		return errors.NewStateConflictf("draft atom %s cannot be superseded; update or abandon it instead", a.HumanID)
	}
	if !a.Status.CanTransitionTo(atom.StatusSuperseded) {
		return errors.NewStateConflictf("atom %s is %s and cannot be superseded", a.HumanID, a.Status)
	}
	return nil
}

// NewAtomRequest describes the successor created by SupersedeWithNewAtom.
// The successor inherits the original's intent identity and tags, and its
// category when Category is empty.
type NewAtomRequest struct {
	Description string
	Category    atom.Category
}

// SupersessionResult pairs the superseded original with its successor.
type SupersessionResult struct {
	Original  *atom.Atom `json:"original"`
	Successor *atom.Atom `json:"successor"`
}

// SupersedeWithNewAtom creates a successor draft as the next edition of the
// original's intent and supersedes the original in one operation. The
// successor starts at IntentVersion original+1 with ParentIntent set.
func (r *Registry) SupersedeWithNewAtom(ctx context.Context, id string, req NewAtomRequest) (*SupersessionResult, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supersedable(a); err != nil {
		return nil, err
	}
	if err := atom.ValidateDescription(req.Description); err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = a.Category
	}
	if !category.Valid() {
		return nil, errors.NewValidationf("invalid atom category: %q", category)
	}

	// Rows predating intent tracking carry no identity; mint one so the
	// new edition joins a well-formed group.
	if a.IntentIdentity == "" {
		a.IntentIdentity = uuid.NewString()
	}

	now := time.Now().UTC()
	successor := &atom.Atom{
		ID:                     uuid.NewString(),
		Description:            req.Description,
		Category:               category,
		Status:                 atom.StatusDraft,
		IntentIdentity:         a.IntentIdentity,
		IntentVersion:          a.IntentVersion + 1,
		ParentIntent:           &a.ID,
		Tags:                   append([]string{}, a.Tags...),
		ObservableOutcomes:     []atom.OutcomeClause{},
		FalsifiabilityCriteria: []atom.CriterionClause{},
		RefinementHistory:      []atom.Refinement{},
		CreatedAt:              now,
		UpdatedAt:              now,
		RowVersion:             1,
	}
	if err := r.scoreAtom(ctx, successor); err != nil {
		return nil, err
	}
	if err := r.store.CreateAtom(ctx, successor); err != nil {
		return nil, err
	}

	a.Status = atom.StatusSuperseded
	a.SupersededBy = &successor.ID
	a.UpdatedAt = now
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		// The original never moved; withdraw the successor draft rather
		// than leave an orphan edition behind.
		if cleanupErr := r.store.DeleteAtom(ctx, successor.ID); cleanupErr != nil {
			r.logger.Warnw("Orphaned successor draft after failed supersession",
				"successor", successor.HumanID, "error", cleanupErr)
		}
		return nil, err
	}
	r.logger.Infow("Superseded atom with new edition",
		"human_id", a.HumanID, "successor", successor.HumanID,
		"intent_version", successor.IntentVersion)
	return &SupersessionResult{Original: a, Successor: successor}, nil
}

// FindSupersessionChain resolves the starting atom by id or human id and
// follows SupersededBy references forward. A dangling reference truncates
// the chain with a warning; a chain longer than the catalog itself means a
// reference cycle and fails hard.
func (r *Registry) FindSupersessionChain(ctx context.Context, idOrHumanID string) ([]*atom.Atom, error) {
	start, err := r.resolve(ctx, idOrHumanID)
	if err != nil {
		return nil, err
	}
	limit, err := r.store.CountAtoms(ctx)
	if err != nil {
		return nil, err
	}

	chain := []*atom.Atom{start}
	for current := start; current.SupersededBy != nil; {
		if len(chain) > limit {
			return nil, errors.AssertionFailedf(
				"supersession chain from %s exceeds catalog size %d; reference cycle suspected",
				start.HumanID, limit)
		}
		next, err := r.store.GetAtom(ctx, *current.SupersededBy)
		if err != nil {
			if errors.IsNotFound(err) {
				r.logger.Warnw("Supersession chain truncated at dangling reference",
					"human_id", current.HumanID, "superseded_by", *current.SupersededBy)
				break
			}
			return nil, err
		}
		chain = append(chain, next)
		current = next
	}
	return chain, nil
}
