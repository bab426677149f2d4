package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// CreateMolecule groups atoms under a named composition.
func (r *Registry) CreateMolecule(ctx context.Context, name, description string) (*atom.Molecule, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationf("molecule name must not be empty")
	}
	m := &atom.Molecule{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.CreateMolecule(ctx, m); err != nil {
		return nil, err
	}
	r.logger.Infow("Created molecule", "molecule_id", m.ID, "name", m.Name)
	return m, nil
}

// GetMolecule loads one molecule.
func (r *Registry) GetMolecule(ctx context.Context, id string) (*atom.Molecule, error) {
	return r.store.GetMolecule(ctx, id)
}

// ListMolecules returns every molecule in creation order.
func (r *Registry) ListMolecules(ctx context.Context) ([]*atom.Molecule, error) {
	return r.store.ListMolecules(ctx)
}

// AddAtomToMolecule appends an atom to the molecule's ordered membership.
// The atom may be addressed by opaque id or human id.
func (r *Registry) AddAtomToMolecule(ctx context.Context, moleculeID, atomID string) error {
	a, err := r.resolve(ctx, atomID)
	if err != nil {
		return err
	}
	return r.store.AddAtomToMolecule(ctx, moleculeID, a.ID)
}

// RemoveAtomFromMolecule detaches an atom from a molecule.
func (r *Registry) RemoveAtomFromMolecule(ctx context.Context, moleculeID, atomID string) error {
	a, err := r.resolve(ctx, atomID)
	if err != nil {
		return err
	}
	return r.store.RemoveAtomFromMolecule(ctx, moleculeID, a.ID)
}

// ListMoleculeAtoms returns a molecule's atoms in membership order.
func (r *Registry) ListMoleculeAtoms(ctx context.Context, moleculeID string) ([]*atom.Atom, error) {
	return r.store.ListMoleculeAtoms(ctx, moleculeID)
}
