// Package registry implements the atom lifecycle engine: creation, guarded
// mutation, quality-gated commits, supersession lineage, tagging, changeset
// batch approval, and molecule grouping, all backed by the SQLite store.
//
// Operations address atoms by opaque id or by human id (IA-NNN)
// interchangeably; every lookup resolves either form.
package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/gate"
	"github.com/jasontalley/pact/atom/scoring"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/coupling"
	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/internal/util"
)

// Scorer produces an atomicity score for an intent description. Satisfied by
// *scoring.Scorer; a nil scorer disables automatic scoring on create.
type Scorer interface {
	Score(ctx context.Context, description string) (*scoring.Result, error)
}

// Options configures a Registry.
type Options struct {
	// Scorer, when non-nil, scores every new atom's description at create
	// time.
	Scorer Scorer

	// Threshold is the minimum quality score for commit. Zero or negative
	// selects gate.DefaultThreshold.
	Threshold int

	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = gate.DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// Registry is the lifecycle engine over the atom store.
type Registry struct {
	store     *storage.SQLStore
	scorer    Scorer
	threshold int
	logger    *zap.SugaredLogger
}

// New creates a registry over the given store.
func New(store *storage.SQLStore, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		store:     store,
		scorer:    opts.Scorer,
		threshold: opts.Threshold,
		logger:    opts.Logger,
	}
}

// Threshold returns the commit gate threshold in effect.
func (r *Registry) Threshold() int {
	return r.threshold
}

// resolve loads an atom by opaque id or human id.
func (r *Registry) resolve(ctx context.Context, idOrHumanID string) (*atom.Atom, error) {
	if atom.IsHumanID(idOrHumanID) {
		return r.store.GetAtomByHumanID(ctx, idOrHumanID)
	}
	return r.store.GetAtom(ctx, idOrHumanID)
}

// CreateRequest carries the fields an operator supplies for a new atom.
type CreateRequest struct {
	Description            string
	Category               atom.Category // empty selects CategoryFunctional
	Tags                   []string
	ObservableOutcomes     []atom.OutcomeClause
	FalsifiabilityCriteria []atom.CriterionClause

	// ChangesetID places the new atom under an open changeset. It then
	// starts proposed instead of draft and commits through changeset
	// approval.
	ChangesetID string
}

// Create validates the request, assigns the next human id, and stores the
// atom as a draft, or as proposed when a changeset is given.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*atom.Atom, error) {
	if err := atom.ValidateDescription(req.Description); err != nil {
		return nil, err
	}
	category := req.Category
	if category == "" {
		category = atom.CategoryFunctional
	}
	if !category.Valid() {
		return nil, errors.NewValidationf("invalid atom category: %q", category)
	}

	now := time.Now().UTC()
	a := &atom.Atom{
		ID:                     uuid.NewString(),
		Description:            req.Description,
		Category:               category,
		Status:                 atom.StatusDraft,
		IntentIdentity:         uuid.NewString(),
		IntentVersion:          1,
		Tags:                   normalizeTags(req.Tags),
		ObservableOutcomes:     req.ObservableOutcomes,
		FalsifiabilityCriteria: req.FalsifiabilityCriteria,
		RefinementHistory:      []atom.Refinement{},
		CreatedAt:              now,
		UpdatedAt:              now,
		RowVersion:             1,
	}
	if a.ObservableOutcomes == nil {
		a.ObservableOutcomes = []atom.OutcomeClause{}
	}
	if a.FalsifiabilityCriteria == nil {
		a.FalsifiabilityCriteria = []atom.CriterionClause{}
	}

	if req.ChangesetID != "" {
		cs, err := r.store.GetChangeset(ctx, req.ChangesetID)
		if err != nil {
			return nil, err
		}
		if !cs.Open() {
			return nil, errors.NewStateConflictf("changeset %s is %s, not open", cs.ID, cs.Status)
		}
		a.Status = atom.StatusProposed
		a.ChangesetID = &cs.ID
	}

	if err := r.scoreAtom(ctx, a); err != nil {
		return nil, err
	}
	if err := r.store.CreateAtom(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Infow("Created atom",
		"human_id", a.HumanID, "status", a.Status, "category", a.Category)
	return a, nil
}

// scoreAtom fills in the quality score when a scorer is configured. The
// scorer itself only errors on context cancellation; judge degradation is
// handled inside it.
func (r *Registry) scoreAtom(ctx context.Context, a *atom.Atom) error {
	if r.scorer == nil {
		return nil
	}
	result, err := r.scorer.Score(ctx, a.Description)
	if err != nil {
		return errors.Wrap(err, "failed to score atom description")
	}
	a.QualityScore = util.Ptr(result.QualityScore)
	return nil
}

// normalizeTags trims entries, drops empties, and deduplicates preserving
// first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Patch is the whitelist of fields mutable while an atom is draft or
// proposed. Nil fields are left unchanged.
type Patch struct {
	Description            *string
	Category               *atom.Category
	QualityScore           *int
	ObservableOutcomes     []atom.OutcomeClause
	FalsifiabilityCriteria []atom.CriterionClause

	// Source attributes a description change in the refinement history.
	// Empty defaults to SourceUser.
	Source atom.RefinementSource
}

// Update applies a patch to a draft or proposed atom. Description changes
// append to the refinement history with their source.
func (r *Registry) Update(ctx context.Context, id string, patch Patch) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Mutable() {
		return nil, errors.NewStateConflictf("atom %s is %s and cannot be modified", a.HumanID, a.Status)
	}

	now := time.Now().UTC()
	if patch.Description != nil && *patch.Description != a.Description {
		if err := atom.ValidateDescription(*patch.Description); err != nil {
			return nil, err
		}
		source := patch.Source
		if source == "" {
			source = atom.SourceUser
		}
		if !source.Valid() {
			return nil, errors.NewValidationf("invalid refinement source: %q", source)
		}
		a.RefinementHistory = append(a.RefinementHistory, atom.Refinement{
			Description: *patch.Description,
			Source:      source,
			RecordedAt:  now,
		})
		a.Description = *patch.Description
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, errors.NewValidationf("invalid atom category: %q", *patch.Category)
		}
		a.Category = *patch.Category
	}
	if patch.QualityScore != nil {
		if *patch.QualityScore < 0 || *patch.QualityScore > 100 {
			return nil, errors.NewValidationf("quality score must be between 0 and 100 (got %d)", *patch.QualityScore)
		}
		a.QualityScore = patch.QualityScore
	}
	if patch.ObservableOutcomes != nil {
		a.ObservableOutcomes = patch.ObservableOutcomes
	}
	if patch.FalsifiabilityCriteria != nil {
		a.FalsifiabilityCriteria = patch.FalsifiabilityCriteria
	}

	a.UpdatedAt = now
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Remove deletes a draft or proposed atom outright. Committed and
// superseded atoms never leave the catalog, and molecule members must be
// detached first.
func (r *Registry) Remove(ctx context.Context, id string) error {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return err
	}
	if !a.Mutable() {
		return errors.NewStateConflictf("atom %s is %s and cannot be removed", a.HumanID, a.Status)
	}
	molecules, err := r.store.MoleculesForAtom(ctx, a.ID)
	if err != nil {
		return err
	}
	if len(molecules) > 0 {
		return errors.NewStateConflictf("atom %s belongs to %d molecule(s); remove it from them first", a.HumanID, len(molecules))
	}
	if err := r.store.DeleteAtom(ctx, a.ID); err != nil {
		return err
	}
	r.logger.Infow("Removed atom", "human_id", a.HumanID)
	return nil
}

// Commit promotes a draft into the governed set after the quality gate
// authorizes its score. Proposed atoms commit through changeset approval
// instead.
func (r *Registry) Commit(ctx context.Context, id string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	switch a.Status {
	case atom.StatusCommitted:
		return nil, errors.NewStateConflictf("atom %s is already committed", a.HumanID)
	case atom.StatusSuperseded:
		return nil, errors.NewStateConflictf("atom %s is superseded and cannot be committed", a.HumanID)
	case atom.StatusProposed:
		return nil, errors.NewStateConflictf("atom %s is proposed; commit it by approving its changeset", a.HumanID)
	case atom.StatusAbandoned:
		return nil, errors.NewStateConflictf("atom %s is abandoned and cannot be committed", a.HumanID)
	}

	if err := gate.Authorize(a.QualityScore, r.threshold).Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a.Status = atom.StatusCommitted
	a.CommittedAt = &now
	a.ChangesetID = nil
	a.UpdatedAt = now
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Infow("Committed atom",
		"human_id", a.HumanID, "quality_score", a.EffectiveScore())
	return a, nil
}

// Abandon withdraws a draft or proposed atom. Terminal.
func (r *Registry) Abandon(ctx context.Context, id string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(atom.StatusAbandoned) {
		return nil, errors.NewStateConflictf("atom %s is %s and cannot be abandoned", a.HumanID, a.Status)
	}
	a.Status = atom.StatusAbandoned
	a.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	r.logger.Infow("Abandoned atom", "human_id", a.HumanID)
	return a, nil
}

// AddTag adds a tag to a draft or proposed atom. Adding a tag the atom
// already carries is a no-op.
func (r *Registry) AddTag(ctx context.Context, id, tag string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, errors.NewValidationf("tag must not be empty")
	}
	if !a.Mutable() {
		return nil, errors.NewStateConflictf("atom %s is %s and cannot be modified", a.HumanID, a.Status)
	}
	if a.HasTag(tag) {
		return a, nil
	}
	a.Tags = append(a.Tags, tag)
	a.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveTag removes a tag from a draft or proposed atom. Removing an absent
// tag is a no-op.
func (r *Registry) RemoveTag(ctx context.Context, id, tag string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Mutable() {
		return nil, errors.NewStateConflictf("atom %s is %s and cannot be modified", a.HumanID, a.Status)
	}
	if !a.HasTag(tag) {
		return a, nil
	}
	kept := make([]string, 0, len(a.Tags)-1)
	for _, t := range a.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	a.Tags = kept
	a.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get loads an atom by opaque id or human id.
func (r *Registry) Get(ctx context.Context, idOrHumanID string) (*atom.Atom, error) {
	return r.resolve(ctx, idOrHumanID)
}

// List returns atoms matching the filter in human id order.
func (r *Registry) List(ctx context.Context, filter storage.ListFilter) ([]*atom.Atom, error) {
	return r.store.ListAtoms(ctx, filter)
}

// Snapshot produces the read-only catalog view the coupling analyzer
// consumes: every atom's human id, description, and status, superseded
// atoms included.
func (r *Registry) Snapshot(ctx context.Context) (coupling.Catalog, error) {
	atoms, err := r.store.ListAtoms(ctx, storage.ListFilter{})
	if err != nil {
		return nil, err
	}
	catalog := make(coupling.Catalog, 0, len(atoms))
	for _, a := range atoms {
		catalog = append(catalog, coupling.Entry{
			HumanID:     a.HumanID,
			Description: a.Description,
			Status:      a.Status,
		})
	}
	return catalog, nil
}
