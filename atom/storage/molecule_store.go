package storage

import (
	"context"
	"database/sql"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/errors"
)

// Molecule query constants
const (
	MoleculeInsertQuery = `
		INSERT INTO molecules (id, name, description, created_at)
		VALUES (?, ?, ?, ?)`

	MoleculeGetQuery = `
		SELECT id, name, description, created_at FROM molecules WHERE id = ?`

	MoleculeListQuery = `
		SELECT id, name, description, created_at FROM molecules
		ORDER BY created_at, id`

	MoleculeMemberInsertQuery = `
		INSERT INTO molecule_atoms (molecule_id, atom_id, position)
		VALUES (?, ?, ?)`

	MoleculeMemberDeleteQuery = `
		DELETE FROM molecule_atoms WHERE molecule_id = ? AND atom_id = ?`

	MoleculeNextPositionQuery = `
		SELECT COALESCE(MAX(position), -1) + 1 FROM molecule_atoms
		WHERE molecule_id = ?`

	MoleculeAtomsQuery = `
		SELECT ` + atomColumns + ` FROM atoms
		INNER JOIN molecule_atoms ON atoms.id = molecule_atoms.atom_id
		WHERE molecule_atoms.molecule_id = ?
		ORDER BY molecule_atoms.position`

	MoleculesForAtomQuery = `
		SELECT molecule_id FROM molecule_atoms WHERE atom_id = ?`
)

// CreateMolecule inserts a new molecule.
func (s *SQLStore) CreateMolecule(ctx context.Context, m *atom.Molecule) error {
	_, err := s.db.ExecContext(ctx, MoleculeInsertQuery,
		m.ID, m.Name, m.Description, m.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "failed to insert molecule %s", m.ID)
	}
	return nil
}

// GetMolecule retrieves a molecule by ID.
func (s *SQLStore) GetMolecule(ctx context.Context, id string) (*atom.Molecule, error) {
	var m atom.Molecule
	err := s.db.QueryRowContext(ctx, MoleculeGetQuery, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundf("molecule %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load molecule %s", id)
	}
	return &m, nil
}

// ListMolecules returns every molecule in creation order.
func (s *SQLStore) ListMolecules(ctx context.Context) ([]*atom.Molecule, error) {
	rows, err := s.db.QueryContext(ctx, MoleculeListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list molecules")
	}
	defer rows.Close()

	var molecules []*atom.Molecule
	for rows.Next() {
		var m atom.Molecule
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan molecule row")
		}
		molecules = append(molecules, &m)
	}
	return molecules, rows.Err()
}

// AddAtomToMolecule appends an atom at the next free position. Positions are
// allocated in the same transaction as the insert so concurrent appends
// cannot collide.
func (s *SQLStore) AddAtomToMolecule(ctx context.Context, moleculeID, atomID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRowContext(ctx, MoleculeNextPositionQuery, moleculeID).Scan(&position); err != nil {
		return errors.Wrapf(err, "failed to allocate position in molecule %s", moleculeID)
	}

	if _, err := tx.ExecContext(ctx, MoleculeMemberInsertQuery, moleculeID, atomID, position); err != nil {
		if isUniqueViolation(err) {
			return errors.NewStateConflictf("atom %s is already in molecule %s", atomID, moleculeID)
		}
		if isForeignKeyViolation(err) {
			return errors.NewNotFoundf("molecule %s or atom %s not found", moleculeID, atomID)
		}
		return errors.Wrapf(err, "failed to add atom %s to molecule %s", atomID, moleculeID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit molecule membership")
	}
	return nil
}

// RemoveAtomFromMolecule deletes one membership row.
func (s *SQLStore) RemoveAtomFromMolecule(ctx context.Context, moleculeID, atomID string) error {
	res, err := s.db.ExecContext(ctx, MoleculeMemberDeleteQuery, moleculeID, atomID)
	if err != nil {
		return errors.Wrapf(err, "failed to remove atom %s from molecule %s", atomID, moleculeID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read delete result")
	}
	if affected == 0 {
		return errors.NewNotFoundf("atom %s is not in molecule %s", atomID, moleculeID)
	}
	return nil
}

// ListMoleculeAtoms returns a molecule's atoms in position order.
func (s *SQLStore) ListMoleculeAtoms(ctx context.Context, moleculeID string) ([]*atom.Atom, error) {
	rows, err := s.db.QueryContext(ctx, MoleculeAtomsQuery, moleculeID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list atoms of molecule %s", moleculeID)
	}
	defer rows.Close()

	var atoms []*atom.Atom
	for rows.Next() {
		a, err := scanAtom(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan atom row")
		}
		atoms = append(atoms, a)
	}
	return atoms, rows.Err()
}

// MoleculesForAtom returns the ids of molecules referencing the atom. The
// registry consults this before removing an atom from the catalog.
func (s *SQLStore) MoleculesForAtom(ctx context.Context, atomID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, MoleculesForAtomQuery, atomID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up molecules for atom %s", atomID)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan molecule id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
