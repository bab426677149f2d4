package atom

import (
	"time"
)

// Molecule composes atoms into a larger behavioral unit. Membership is
// ordered and guards removal: an atom cannot leave the catalog while a
// molecule still references it.
type Molecule struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MoleculeAtom is one ordered membership row.
type MoleculeAtom struct {
	MoleculeID string `db:"molecule_id" json:"molecule_id"`
	AtomID     string `db:"atom_id" json:"atom_id"`
	Position   int    `db:"position" json:"position"`
}
