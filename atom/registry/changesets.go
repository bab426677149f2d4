package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/gate"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/errors"
)

// OpenChangeset starts an empty changeset accepting proposed atoms.
func (r *Registry) OpenChangeset(ctx context.Context, name string) (*atom.Changeset, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationf("changeset name must not be empty")
	}
	now := time.Now().UTC()
	cs := &atom.Changeset{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    atom.ChangesetOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.CreateChangeset(ctx, cs); err != nil {
		return nil, err
	}
	r.logger.Infow("Opened changeset", "changeset_id", cs.ID, "name", cs.Name)
	return cs, nil
}

// GetChangeset loads one changeset.
func (r *Registry) GetChangeset(ctx context.Context, id string) (*atom.Changeset, error) {
	return r.store.GetChangeset(ctx, id)
}

// ListChangesets returns every changeset in creation order.
func (r *Registry) ListChangesets(ctx context.Context) ([]*atom.Changeset, error) {
	return r.store.ListChangesets(ctx)
}

// ApproveChangeset commits every proposed member in one transaction. Each
// member must pass the quality gate; the first failure aborts the whole
// approval and no member moves.
func (r *Registry) ApproveChangeset(ctx context.Context, id string) (*atom.Changeset, error) {
	cs, err := r.store.GetChangeset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cs.Open() {
		return nil, errors.NewStateConflictf("changeset %s is %s, not open", cs.ID, cs.Status)
	}
	members, err := r.changesetMembers(ctx, cs.ID)
	if err != nil {
		return nil, err
	}

	for _, member := range members {
		if err := gate.Authorize(member.QualityScore, r.threshold).Err(); err != nil {
			return nil, errors.Wrapf(err, "atom %s blocks approval of changeset %s", member.HumanID, cs.ID)
		}
	}

	now := time.Now().UTC()
	for _, member := range members {
		committedAt := now
		member.Status = atom.StatusCommitted
		member.CommittedAt = &committedAt
		member.ChangesetID = nil
		member.UpdatedAt = now
	}
	cs.Status = atom.ChangesetApproved
	cs.UpdatedAt = now
	if err := r.store.ResolveChangeset(ctx, cs, members); err != nil {
		return nil, err
	}
	r.logger.Infow("Approved changeset", "changeset_id", cs.ID, "atoms", len(members))
	return cs, nil
}

// DiscardChangeset abandons every proposed member and closes the changeset.
// Members keep their changeset linkage as an audit trail.
func (r *Registry) DiscardChangeset(ctx context.Context, id string) (*atom.Changeset, error) {
	cs, err := r.store.GetChangeset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cs.Open() {
		return nil, errors.NewStateConflictf("changeset %s is %s, not open", cs.ID, cs.Status)
	}
	members, err := r.changesetMembers(ctx, cs.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, member := range members {
		member.Status = atom.StatusAbandoned
		member.UpdatedAt = now
	}
	cs.Status = atom.ChangesetDiscarded
	cs.UpdatedAt = now
	if err := r.store.ResolveChangeset(ctx, cs, members); err != nil {
		return nil, err
	}
	r.logger.Infow("Discarded changeset", "changeset_id", cs.ID, "atoms", len(members))
	return cs, nil
}

// ConvertToDraft detaches a proposed atom from its changeset for direct
// iteration.
func (r *Registry) ConvertToDraft(ctx context.Context, id string) (*atom.Atom, error) {
	a, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != atom.StatusProposed {
		return nil, errors.NewStateConflictf("atom %s is %s, not proposed", a.HumanID, a.Status)
	}
	a.Status = atom.StatusDraft
	a.ChangesetID = nil
	a.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateAtom(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// changesetMembers loads the proposed atoms still attached to a changeset.
func (r *Registry) changesetMembers(ctx context.Context, changesetID string) ([]*atom.Atom, error) {
	return r.store.ListAtoms(ctx, storage.ListFilter{
		Statuses:    []atom.Status{atom.StatusProposed},
		ChangesetID: changesetID,
	})
}
